package actor

import (
	"context"
	"fmt"

	"github.com/go-carservice-api/internal/cache"
	"github.com/go-carservice-api/internal/domain"
)

// Service manages registered admins and customers after sign-up.
type Service interface {
	Get(ctx context.Context, kind domain.ActorKind, id string) (*domain.Actor, error)
	List(ctx context.Context, kind domain.ActorKind) ([]domain.Actor, error)
	Update(ctx context.Context, kind domain.ActorKind, id string, req domain.UpdateActorRequest) (*domain.Actor, error)
	Delete(ctx context.Context, kind domain.ActorKind, id string) error
}

type actorStore interface {
	Get(ctx context.Context, id string) (*domain.Actor, error)
	List(ctx context.Context) ([]domain.Actor, error)
	Update(ctx context.Context, id string, req domain.UpdateActorRequest) (*domain.Actor, error)
	Delete(ctx context.Context, id string) error
}

type invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

type ServiceDeps struct {
	Admins    actorStore
	Customers actorStore
	Cache     invalidator
}

type service struct {
	admins    actorStore
	customers actorStore
	cache     invalidator
}

func NewService(deps ServiceDeps) Service {
	return &service{admins: deps.Admins, customers: deps.Customers, cache: deps.Cache}
}

func (s *service) repo(kind domain.ActorKind) (actorStore, error) {
	switch kind {
	case domain.KindAdmin:
		return s.admins, nil
	case domain.KindCustomer:
		return s.customers, nil
	default:
		return nil, fmt.Errorf("unknown actor kind %q: %w", kind, domain.ErrValidation)
	}
}

func (s *service) Get(ctx context.Context, kind domain.ActorKind, id string) (*domain.Actor, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

func (s *service) List(ctx context.Context, kind domain.ActorKind) ([]domain.Actor, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	return repo.List(ctx)
}

// Update changes the display name. Customer names are embedded in the
// customer's cached booking documents, which are dropped on success.
func (s *service) Update(ctx context.Context, kind domain.ActorKind, id string, req domain.UpdateActorRequest) (*domain.Actor, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	if req.Name == nil {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrValidation)
	}
	a, err := repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if kind == domain.KindCustomer {
		if err := s.cache.Invalidate(ctx, cache.BookingsByCustomerKey(id)); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Delete removes the actor. A customer that still owns cars or bookings is
// rejected with domain.ErrConflict by the store.
func (s *service) Delete(ctx context.Context, kind domain.ActorKind, id string) error {
	repo, err := s.repo(kind)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	if kind == domain.KindCustomer {
		return s.cache.Invalidate(ctx, cache.CarsByCustomerKey(id), cache.BookingsByCustomerKey(id))
	}
	return nil
}
