package postgres

import (
	"context"
	"database/sql"

	"github.com/go-carservice-api/internal/domain"
)

const serviceColumns = "id, category, name, price, status, features, details, image_url, created_at, updated_at"

// ServiceRepo needs the pool itself, not a DBTX: writes that move a service
// between categories lock the row in their own transaction.
type ServiceRepo struct {
	db *sql.DB
}

func NewServiceRepo(db *sql.DB) *ServiceRepo {
	return &ServiceRepo{db: db}
}

func scanService(row interface{ Scan(...any) error }) (*domain.Service, error) {
	var (
		s                 domain.Service
		features, details []byte
	)
	if err := row.Scan(&s.ID, &s.Category, &s.Name, &s.Price, &s.Status,
		&features, &details, &s.ImageURL, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if s.Features, err = decodeList(features); err != nil {
		return nil, err
	}
	if s.Details, err = decodeList(details); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepo) Create(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	features, err := encodeList(s.Features)
	if err != nil {
		return nil, err
	}
	details, err := encodeList(s.Details)
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO services (id, category, name, price, status, features, details)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb)
		RETURNING ` + serviceColumns
	created, err := scanService(r.db.QueryRowContext(ctx, query,
		s.ID, s.Category, s.Name, s.Price, s.Status, features, details))
	if err != nil {
		return nil, classify(err)
	}
	return created, nil
}

func (r *ServiceRepo) Get(ctx context.Context, id string) (*domain.Service, error) {
	s, err := scanService(r.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err)
	}
	return s, nil
}

func (r *ServiceRepo) List(ctx context.Context) ([]domain.Service, error) {
	return r.list(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY category, name`)
}

func (r *ServiceRepo) ListByCategory(ctx context.Context, category string) ([]domain.Service, error) {
	return r.list(ctx, `SELECT `+serviceColumns+` FROM services WHERE category = $1 ORDER BY name`, category)
}

func (r *ServiceRepo) list(ctx context.Context, query string, args ...any) ([]domain.Service, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []domain.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *s)
	}
	return out, classify(rows.Err())
}

func (r *ServiceRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM services ORDER BY category`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, classify(err)
		}
		out = append(out, c)
	}
	return out, classify(rows.Err())
}

// Update applies req and returns the row as it was before and after. The old
// row is read under FOR UPDATE in the same transaction, so concurrent writers
// each see the category the previous one committed.
func (r *ServiceRepo) Update(ctx context.Context, id string, req domain.UpdateServiceRequest) (before, after *domain.Service, err error) {
	var set updateSet
	if req.Category != nil {
		set.add(colCategory, *req.Category)
	}
	if req.Name != nil {
		set.add(colName, *req.Name)
	}
	if req.Price != nil {
		set.add(colPrice, *req.Price)
	}
	if req.Status != nil {
		set.add(colStatus, *req.Status)
	}
	if req.Features != nil {
		if err := set.addJSON(colFeatures, nonNil(*req.Features)); err != nil {
			return nil, nil, err
		}
	}
	if req.Details != nil {
		if err := set.addJSON(colDetails, nonNil(*req.Details)); err != nil {
			return nil, nil, err
		}
	}
	return r.lockedUpdate(ctx, id, set)
}

// SetImageURL points the service at a new image and returns the row before
// and after, so the caller can drop the object it replaced.
func (r *ServiceRepo) SetImageURL(ctx context.Context, id, url string) (before, after *domain.Service, err error) {
	var set updateSet
	set.add(colImageURL, url)
	return r.lockedUpdate(ctx, id, set)
}

func (r *ServiceRepo) lockedUpdate(ctx context.Context, id string, set updateSet) (*domain.Service, *domain.Service, error) {
	q, err := buildUpdate("services", set, id, serviceColumns)
	if err != nil {
		return nil, nil, err
	}
	var before, after *domain.Service
	err = WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		old, err := scanService(tx.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return classify(err)
		}
		updated, err := scanService(tx.QueryRowContext(ctx, q.SQL, q.Args...))
		if err != nil {
			return classify(err)
		}
		before, after = old, updated
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Delete removes the service and returns the deleted row. A service still
// referenced by bookings is a domain.ErrConflict.
func (r *ServiceRepo) Delete(ctx context.Context, id string) (*domain.Service, error) {
	s, err := scanService(r.db.QueryRowContext(ctx, `DELETE FROM services WHERE id = $1 RETURNING `+serviceColumns, id))
	if err != nil {
		return nil, classifyDelete(err)
	}
	return s, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
