package workshop

import (
	"context"
	"fmt"

	"github.com/go-carservice-api/internal/cache"
	"github.com/go-carservice-api/internal/domain"
	"github.com/go-carservice-api/internal/pkg/id"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateWorkshopRequest) (*domain.Workshop, error)
	Get(ctx context.Context, workshopID string) (*domain.Workshop, error)
	ListActive(ctx context.Context) ([]domain.Workshop, error)
	Update(ctx context.Context, workshopID string, req domain.UpdateWorkshopRequest) (*domain.Workshop, error)
}

type workshopStore interface {
	Create(ctx context.Context, w *domain.Workshop) (*domain.Workshop, error)
	Get(ctx context.Context, id string) (*domain.Workshop, error)
	ListActive(ctx context.Context) ([]domain.Workshop, error)
	Update(ctx context.Context, id string, req domain.UpdateWorkshopRequest) (*domain.Workshop, error)
}

type bookingIndex interface {
	CustomerIDsByWorkshop(ctx context.Context, workshopID string) ([]string, error)
}

type ServiceDeps struct {
	Repo     workshopStore
	Bookings bookingIndex
	Cache    *cache.Cache
	TTL      cache.TTLs
}

type service struct {
	repo     workshopStore
	bookings bookingIndex
	cache    *cache.Cache
	ttl      cache.TTLs
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.Repo, bookings: deps.Bookings, cache: deps.Cache, ttl: deps.TTL}
}

func (s *service) Register(ctx context.Context, req domain.CreateWorkshopRequest) (*domain.Workshop, error) {
	status := req.Status
	if status == "" {
		status = domain.WorkshopInProgress
	}
	w, err := s.repo.Create(ctx, &domain.Workshop{
		ID:          id.New(),
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Longitude:   req.Longitude,
		Latitude:    req.Latitude,
		Address:     req.Address,
		Status:      status,
		IsActive:    true,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.ActiveWorkshopsKey); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *service) Get(ctx context.Context, workshopID string) (*domain.Workshop, error) {
	return cache.Read(ctx, s.cache, cache.WorkshopKey(workshopID), s.ttl.Entity, func(ctx context.Context) (*domain.Workshop, error) {
		return s.repo.Get(ctx, workshopID)
	})
}

func (s *service) ListActive(ctx context.Context) ([]domain.Workshop, error) {
	return cache.Read(ctx, s.cache, cache.ActiveWorkshopsKey, s.ttl.List, s.repo.ListActive)
}

// Update also drops the booking documents of every customer with a booking at the workshop.
func (s *service) Update(ctx context.Context, workshopID string, req domain.UpdateWorkshopRequest) (*domain.Workshop, error) {
	if req.Empty() {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrValidation)
	}
	w, err := s.repo.Update(ctx, workshopID, req)
	if err != nil {
		return nil, err
	}
	customers, err := s.bookings.CustomerIDsByWorkshop(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	keys := []string{cache.WorkshopKey(workshopID), cache.ActiveWorkshopsKey}
	for _, cid := range customers {
		keys = append(keys, cache.BookingsByCustomerKey(cid))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		return nil, err
	}
	return w, nil
}
