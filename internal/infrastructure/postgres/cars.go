package postgres

import (
	"context"

	"github.com/go-carservice-api/internal/domain"
)

const carColumns = "id, customer_id, registration_number, brand, model, created_at, updated_at"

type CarRepo struct {
	db DBTX
}

func NewCarRepo(db DBTX) *CarRepo {
	return &CarRepo{db: db}
}

func scanCar(row interface{ Scan(...any) error }) (*domain.Car, error) {
	var c domain.Car
	if err := row.Scan(&c.ID, &c.CustomerID, &c.RegistrationNumber, &c.Brand, &c.Model, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CarRepo) Create(ctx context.Context, c *domain.Car) (*domain.Car, error) {
	query := `INSERT INTO cars (id, customer_id, registration_number, brand, model)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + carColumns
	created, err := scanCar(r.db.QueryRowContext(ctx, query, c.ID, c.CustomerID, c.RegistrationNumber, c.Brand, c.Model))
	if err != nil {
		return nil, classify(err)
	}
	return created, nil
}

func (r *CarRepo) Get(ctx context.Context, id string) (*domain.Car, error) {
	c, err := scanCar(r.db.QueryRowContext(ctx, `SELECT `+carColumns+` FROM cars WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err)
	}
	return c, nil
}

func (r *CarRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Car, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+carColumns+` FROM cars WHERE customer_id = $1 ORDER BY created_at`, customerID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []domain.Car{}
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *c)
	}
	return out, classify(rows.Err())
}

func (r *CarRepo) Update(ctx context.Context, id string, req domain.UpdateCarRequest) (*domain.Car, error) {
	var set updateSet
	if req.RegistrationNumber != nil {
		set.add(colRegistrationNumber, *req.RegistrationNumber)
	}
	if req.Brand != nil {
		set.add(colBrand, *req.Brand)
	}
	if req.Model != nil {
		set.add(colModel, *req.Model)
	}
	q, err := buildUpdate("cars", set, id, carColumns)
	if err != nil {
		return nil, err
	}
	c, err := scanCar(r.db.QueryRowContext(ctx, q.SQL, q.Args...))
	if err != nil {
		return nil, classify(err)
	}
	return c, nil
}

func (r *CarRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return classifyDelete(err)
	}
	return expectAffected(res)
}
