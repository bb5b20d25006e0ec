package postgres

import (
	"context"

	"github.com/go-carservice-api/internal/domain"
)

const workshopColumns = "id, name, phone_number, longitude, latitude, address, status, is_active, created_at, updated_at"

type WorkshopRepo struct {
	db DBTX
}

func NewWorkshopRepo(db DBTX) *WorkshopRepo {
	return &WorkshopRepo{db: db}
}

func scanWorkshop(row interface{ Scan(...any) error }) (*domain.Workshop, error) {
	var w domain.Workshop
	if err := row.Scan(&w.ID, &w.Name, &w.PhoneNumber, &w.Longitude, &w.Latitude,
		&w.Address, &w.Status, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkshopRepo) Create(ctx context.Context, w *domain.Workshop) (*domain.Workshop, error) {
	query := `INSERT INTO workshops (id, name, phone_number, longitude, latitude, address, status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + workshopColumns
	created, err := scanWorkshop(r.db.QueryRowContext(ctx, query,
		w.ID, w.Name, w.PhoneNumber, w.Longitude, w.Latitude, w.Address, w.Status, w.IsActive))
	if err != nil {
		return nil, classify(err)
	}
	return created, nil
}

func (r *WorkshopRepo) Get(ctx context.Context, id string) (*domain.Workshop, error) {
	w, err := scanWorkshop(r.db.QueryRowContext(ctx, `SELECT `+workshopColumns+` FROM workshops WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err)
	}
	return w, nil
}

func (r *WorkshopRepo) ListActive(ctx context.Context) ([]domain.Workshop, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+workshopColumns+` FROM workshops WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []domain.Workshop{}
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *w)
	}
	return out, classify(rows.Err())
}

func (r *WorkshopRepo) Update(ctx context.Context, id string, req domain.UpdateWorkshopRequest) (*domain.Workshop, error) {
	var set updateSet
	if req.Name != nil {
		set.add(colName, *req.Name)
	}
	if req.PhoneNumber != nil {
		set.add(colPhoneNumber, *req.PhoneNumber)
	}
	if req.Longitude != nil {
		set.add(colLongitude, *req.Longitude)
	}
	if req.Latitude != nil {
		set.add(colLatitude, *req.Latitude)
	}
	if req.Address != nil {
		set.add(colAddress, *req.Address)
	}
	if req.Status != nil {
		set.add(colStatus, *req.Status)
	}
	if req.IsActive != nil {
		set.add(colIsActive, *req.IsActive)
	}
	q, err := buildUpdate("workshops", set, id, workshopColumns)
	if err != nil {
		return nil, err
	}
	w, err := scanWorkshop(r.db.QueryRowContext(ctx, q.SQL, q.Args...))
	if err != nil {
		return nil, classify(err)
	}
	return w, nil
}
