package car

import (
	"context"
	"fmt"

	"github.com/go-carservice-api/internal/cache"
	"github.com/go-carservice-api/internal/domain"
	"github.com/go-carservice-api/internal/pkg/id"
)

// Service manages customer cars. Reads are open to the owner and to admins;
// writes are open to the owner only.
type Service interface {
	Create(ctx context.Context, caller domain.Identity, req domain.CreateCarRequest) (*domain.Car, error)
	Get(ctx context.Context, caller domain.Identity, carID string) (*domain.Car, error)
	ListByCustomer(ctx context.Context, caller domain.Identity, customerID string) ([]domain.Car, error)
	Update(ctx context.Context, caller domain.Identity, carID string, req domain.UpdateCarRequest) (*domain.Car, error)
	Delete(ctx context.Context, caller domain.Identity, carID string) error
}

type carStore interface {
	Create(ctx context.Context, c *domain.Car) (*domain.Car, error)
	Get(ctx context.Context, id string) (*domain.Car, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Car, error)
	Update(ctx context.Context, id string, req domain.UpdateCarRequest) (*domain.Car, error)
	Delete(ctx context.Context, id string) error
}

type ServiceDeps struct {
	Repo  carStore
	Cache *cache.Cache
	TTL   cache.TTLs
}

type service struct {
	repo  carStore
	cache *cache.Cache
	ttl   cache.TTLs
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.Repo, cache: deps.Cache, ttl: deps.TTL}
}

func (s *service) Create(ctx context.Context, caller domain.Identity, req domain.CreateCarRequest) (*domain.Car, error) {
	c, err := s.repo.Create(ctx, &domain.Car{
		ID:                 id.New(),
		CustomerID:         caller.SubjectID,
		RegistrationNumber: req.RegistrationNumber,
		Brand:              req.Brand,
		Model:              req.Model,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.CarsByCustomerKey(caller.SubjectID)); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, caller domain.Identity, carID string) (*domain.Car, error) {
	c, err := cache.Read(ctx, s.cache, cache.CarKey(carID), s.ttl.Entity, func(ctx context.Context) (*domain.Car, error) {
		return s.repo.Get(ctx, carID)
	})
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(c.CustomerID) {
		return nil, fmt.Errorf("car %s: %w", carID, domain.ErrForbidden)
	}
	return c, nil
}

func (s *service) ListByCustomer(ctx context.Context, caller domain.Identity, customerID string) ([]domain.Car, error) {
	if !caller.CanAccess(customerID) {
		return nil, fmt.Errorf("cars of %s: %w", customerID, domain.ErrForbidden)
	}
	return cache.Read(ctx, s.cache, cache.CarsByCustomerKey(customerID), s.ttl.List, func(ctx context.Context) ([]domain.Car, error) {
		return s.repo.ListByCustomer(ctx, customerID)
	})
}

func (s *service) Update(ctx context.Context, caller domain.Identity, carID string, req domain.UpdateCarRequest) (*domain.Car, error) {
	if req.Empty() {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrValidation)
	}
	if _, err := s.owned(ctx, caller, carID); err != nil {
		return nil, err
	}
	c, err := s.repo.Update(ctx, carID, req)
	if err != nil {
		return nil, err
	}
	if err := s.invalidate(ctx, carID, c.CustomerID); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete fails with domain.ErrConflict while bookings reference the car.
func (s *service) Delete(ctx context.Context, caller domain.Identity, carID string) error {
	c, err := s.owned(ctx, caller, carID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, carID); err != nil {
		return err
	}
	return s.invalidate(ctx, carID, c.CustomerID)
}

// owned loads the stored car and checks the caller owns it.
func (s *service) owned(ctx context.Context, caller domain.Identity, carID string) (*domain.Car, error) {
	c, err := s.repo.Get(ctx, carID)
	if err != nil {
		return nil, err
	}
	if c.CustomerID != caller.SubjectID {
		return nil, fmt.Errorf("car %s: %w", carID, domain.ErrForbidden)
	}
	return c, nil
}

func (s *service) invalidate(ctx context.Context, carID, ownerID string) error {
	return s.cache.Invalidate(ctx,
		cache.CarKey(carID),
		cache.CarsByCustomerKey(ownerID),
		cache.BookingsByCustomerKey(ownerID),
	)
}
