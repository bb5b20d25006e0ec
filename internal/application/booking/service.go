package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-carservice-api/internal/cache"
	"github.com/go-carservice-api/internal/domain"
	"github.com/go-carservice-api/internal/pkg/id"
)

const dateLayout = "2006-01-02"

type Service interface {
	Create(ctx context.Context, caller domain.Identity, req domain.CreateBookingRequest) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, caller domain.Identity, customerID string) ([]domain.BookingDetail, error)
	Update(ctx context.Context, bookingID string, req domain.UpdateBookingRequest) (*domain.Booking, error)
}

type bookingStore interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	Update(ctx context.Context, id string, req domain.UpdateBookingRequest) (*domain.Booking, error)
	ListDetailsByCustomer(ctx context.Context, customerID string) ([]domain.BookingDetail, error)
}

type carStore interface {
	Get(ctx context.Context, id string) (*domain.Car, error)
}

// serviceReader resolves the catalog entry being booked; the catalog service
// satisfies it through its cache.
type serviceReader interface {
	Get(ctx context.Context, serviceID string) (*domain.Service, error)
}

type ServiceDeps struct {
	Repo     bookingStore
	Cars     carStore
	Services serviceReader
	Cache    *cache.Cache
	TTL      cache.TTLs
	Logger   *slog.Logger
}

type service struct {
	repo     bookingStore
	cars     carStore
	services serviceReader
	cache    *cache.Cache
	ttl      cache.TTLs
	log      *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &service{
		repo:     deps.Repo,
		cars:     deps.Cars,
		services: deps.Services,
		cache:    deps.Cache,
		ttl:      deps.TTL,
		log:      log,
	}
}

// Create books a service for one of the caller's cars. The total is the
// current service price plus the convenience fee.
func (s *service) Create(ctx context.Context, caller domain.Identity, req domain.CreateBookingRequest) (*domain.Booking, error) {
	date, err := time.Parse(dateLayout, req.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("booking_date: %w", domain.ErrValidation)
	}
	car, err := s.cars.Get(ctx, req.CarID)
	if err != nil {
		return nil, fmt.Errorf("car %s: %w", req.CarID, err)
	}
	if car.CustomerID != caller.SubjectID {
		return nil, fmt.Errorf("car %s: %w", req.CarID, domain.ErrForbidden)
	}
	svc, err := s.services.Get(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", req.ServiceID, err)
	}
	if svc.Status != domain.ServiceAvailable {
		return nil, fmt.Errorf("service %s is not available: %w", req.ServiceID, domain.ErrValidation)
	}

	b, err := s.repo.Create(ctx, &domain.Booking{
		ID:            id.New(),
		CustomerID:    caller.SubjectID,
		CarID:         car.ID,
		ServiceID:     svc.ID,
		Status:        domain.BookingPending,
		BookingDate:   date,
		PickupAddress: req.PickupAddress,
		PickupTiming:  req.PickupTiming,
		Longitude:     req.Longitude,
		Latitude:      req.Latitude,
		TotalAmount:   svc.Price + domain.ConvenienceFee,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.BookingsByCustomerKey(caller.SubjectID)); err != nil {
		return nil, err
	}
	s.log.Info("booking created", "booking_id", b.ID, "service_id", svc.ID)
	return b, nil
}

func (s *service) ListByCustomer(ctx context.Context, caller domain.Identity, customerID string) ([]domain.BookingDetail, error) {
	if !caller.CanAccess(customerID) {
		return nil, fmt.Errorf("bookings of %s: %w", customerID, domain.ErrForbidden)
	}
	return cache.Read(ctx, s.cache, cache.BookingsByCustomerKey(customerID), s.ttl.List, func(ctx context.Context) ([]domain.BookingDetail, error) {
		return s.repo.ListDetailsByCustomer(ctx, customerID)
	})
}

// Update sets the status or assigns a workshop. Admin only; the caller is
// checked at the route.
func (s *service) Update(ctx context.Context, bookingID string, req domain.UpdateBookingRequest) (*domain.Booking, error) {
	if req.Empty() {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrValidation)
	}
	b, err := s.repo.Update(ctx, bookingID, req)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.BookingsByCustomerKey(b.CustomerID)); err != nil {
		return nil, err
	}
	return b, nil
}
