package postgres

import (
	"context"

	"github.com/go-carservice-api/internal/domain"
)

// Reviews carry the service of their booking, resolved through a join.
const reviewSelect = `SELECT r.id, r.booking_id, b.service_id, r.rating, r.review, r.created_at, r.updated_at
	FROM reviews r JOIN bookings b ON b.id = r.booking_id`

type ReviewRepo struct {
	db DBTX
}

func NewReviewRepo(db DBTX) *ReviewRepo {
	return &ReviewRepo{db: db}
}

func scanReview(row interface{ Scan(...any) error }) (*domain.Review, error) {
	var rv domain.Review
	if err := row.Scan(&rv.ID, &rv.BookingID, &rv.ServiceID, &rv.Rating, &rv.Review, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) (*domain.Review, error) {
	query := `WITH r AS (
			INSERT INTO reviews (id, booking_id, rating, review) VALUES ($1, $2, $3, $4)
			RETURNING id, booking_id, rating, review, created_at, updated_at
		)
		SELECT r.id, r.booking_id, b.service_id, r.rating, r.review, r.created_at, r.updated_at
		FROM r JOIN bookings b ON b.id = r.booking_id`
	created, err := scanReview(r.db.QueryRowContext(ctx, query, rv.ID, rv.BookingID, rv.Rating, rv.Review))
	if err != nil {
		return nil, classify(err)
	}
	return created, nil
}

func (r *ReviewRepo) Get(ctx context.Context, id string) (*domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, classify(err)
	}
	return rv, nil
}

func (r *ReviewRepo) GetByBooking(ctx context.Context, bookingID string) (*domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+` WHERE r.booking_id = $1`, bookingID))
	if err != nil {
		return nil, classify(err)
	}
	return rv, nil
}

func (r *ReviewRepo) ListByService(ctx context.Context, serviceID string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, reviewSelect+` WHERE b.service_id = $1 ORDER BY r.created_at DESC`, serviceID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *rv)
	}
	return out, classify(rows.Err())
}

func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return classifyDelete(err)
	}
	return expectAffected(res)
}
