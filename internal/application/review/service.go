package review

import (
	"context"
	"fmt"

	"github.com/go-carservice-api/internal/cache"
	"github.com/go-carservice-api/internal/domain"
	"github.com/go-carservice-api/internal/pkg/id"
)

// Service manages one review per booking. Only the customer who made the
// booking may review it or delete the review.
type Service interface {
	Create(ctx context.Context, caller domain.Identity, req domain.CreateReviewRequest) (*domain.Review, error)
	ListByService(ctx context.Context, serviceID string) ([]domain.Review, error)
	GetByBooking(ctx context.Context, bookingID string) (*domain.Review, error)
	Delete(ctx context.Context, caller domain.Identity, reviewID string) error
}

type reviewStore interface {
	Create(ctx context.Context, rv *domain.Review) (*domain.Review, error)
	Get(ctx context.Context, id string) (*domain.Review, error)
	GetByBooking(ctx context.Context, bookingID string) (*domain.Review, error)
	ListByService(ctx context.Context, serviceID string) ([]domain.Review, error)
	Delete(ctx context.Context, id string) error
}

type bookingStore interface {
	Get(ctx context.Context, id string) (*domain.Booking, error)
}

type ServiceDeps struct {
	Repo     reviewStore
	Bookings bookingStore
	Cache    *cache.Cache
	TTL      cache.TTLs
}

type service struct {
	repo     reviewStore
	bookings bookingStore
	cache    *cache.Cache
	ttl      cache.TTLs
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.Repo, bookings: deps.Bookings, cache: deps.Cache, ttl: deps.TTL}
}

func (s *service) Create(ctx context.Context, caller domain.Identity, req domain.CreateReviewRequest) (*domain.Review, error) {
	if _, err := s.ownBooking(ctx, caller, req.BookingID); err != nil {
		return nil, err
	}
	rv, err := s.repo.Create(ctx, &domain.Review{
		ID:        id.New(),
		BookingID: req.BookingID,
		Rating:    req.Rating,
		Review:    req.Review,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.ReviewsByServiceKey(rv.ServiceID)); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *service) ListByService(ctx context.Context, serviceID string) ([]domain.Review, error) {
	return cache.Read(ctx, s.cache, cache.ReviewsByServiceKey(serviceID), s.ttl.List, func(ctx context.Context) ([]domain.Review, error) {
		return s.repo.ListByService(ctx, serviceID)
	})
}

func (s *service) GetByBooking(ctx context.Context, bookingID string) (*domain.Review, error) {
	return s.repo.GetByBooking(ctx, bookingID)
}

func (s *service) Delete(ctx context.Context, caller domain.Identity, reviewID string) error {
	rv, err := s.repo.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if _, err := s.ownBooking(ctx, caller, rv.BookingID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, cache.ReviewsByServiceKey(rv.ServiceID))
}

func (s *service) ownBooking(ctx context.Context, caller domain.Identity, bookingID string) (*domain.Booking, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, err)
	}
	if b.CustomerID != caller.SubjectID {
		return nil, fmt.Errorf("booking %s: %w", bookingID, domain.ErrForbidden)
	}
	return b, nil
}
