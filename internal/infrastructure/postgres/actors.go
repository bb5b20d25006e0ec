package postgres

import (
	"context"
	"fmt"

	"github.com/go-carservice-api/internal/domain"
)

const actorColumns = "id, phone_number, name, created_at, updated_at"

// ActorRepo stores admins or customers; both tables share one shape.
type ActorRepo struct {
	db    DBTX
	table string
	role  string
}

func NewAdminRepo(db DBTX) *ActorRepo {
	return &ActorRepo{db: db, table: "admins", role: domain.RoleAdmin}
}

func NewCustomerRepo(db DBTX) *ActorRepo {
	return &ActorRepo{db: db, table: "customers", role: domain.RoleCustomer}
}

func (r *ActorRepo) scan(row interface{ Scan(...any) error }) (*domain.Actor, error) {
	a := &domain.Actor{Role: r.role}
	if err := row.Scan(&a.ID, &a.PhoneNumber, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *ActorRepo) Create(ctx context.Context, a *domain.Actor) (*domain.Actor, error) {
	query := fmt.Sprintf(`INSERT INTO %s (id, phone_number, name) VALUES ($1, $2, $3) RETURNING %s`, r.table, actorColumns)
	created, err := r.scan(r.db.QueryRowContext(ctx, query, a.ID, a.PhoneNumber, a.Name))
	if err != nil {
		return nil, classify(err)
	}
	return created, nil
}

func (r *ActorRepo) Get(ctx context.Context, id string) (*domain.Actor, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, actorColumns, r.table)
	a, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify(err)
	}
	return a, nil
}

func (r *ActorRepo) GetByPhone(ctx context.Context, phone string) (*domain.Actor, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE phone_number = $1`, actorColumns, r.table)
	a, err := r.scan(r.db.QueryRowContext(ctx, query, phone))
	if err != nil {
		return nil, classify(err)
	}
	return a, nil
}

func (r *ActorRepo) List(ctx context.Context) ([]domain.Actor, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at`, actorColumns, r.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []domain.Actor{}
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *a)
	}
	return out, classify(rows.Err())
}

func (r *ActorRepo) Update(ctx context.Context, id string, req domain.UpdateActorRequest) (*domain.Actor, error) {
	var set updateSet
	if req.Name != nil {
		set.add(colName, *req.Name)
	}
	q, err := buildUpdate(r.table, set, id, actorColumns)
	if err != nil {
		return nil, err
	}
	a, err := r.scan(r.db.QueryRowContext(ctx, q.SQL, q.Args...))
	if err != nil {
		return nil, classify(err)
	}
	return a, nil
}

func (r *ActorRepo) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return classifyDelete(err)
	}
	return expectAffected(res)
}
