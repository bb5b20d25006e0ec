package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/go-carservice-api/internal/cache"
	"github.com/go-carservice-api/internal/domain"
	s3infra "github.com/go-carservice-api/internal/infrastructure/s3"
	"github.com/go-carservice-api/internal/pkg/id"
)

// Service manages the service catalog. Reads go through the cache; every
// write invalidates the entries it can have changed before returning.
type Service interface {
	Create(ctx context.Context, req domain.CreateServiceRequest) (*domain.Service, error)
	Get(ctx context.Context, id string) (*domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Service, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, req domain.UpdateServiceRequest) (*domain.Service, error)
	Delete(ctx context.Context, id string) error
	Charges(ctx context.Context, id string) (*domain.Charges, error)
	UploadImage(ctx context.Context, id string, img ImageUpload) (*domain.Service, error)
}

type ImageUpload struct {
	Reader   io.Reader
	Filename string
}

type serviceStore interface {
	Create(ctx context.Context, s *domain.Service) (*domain.Service, error)
	Get(ctx context.Context, serviceID string) (*domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Service, error)
	Categories(ctx context.Context) ([]string, error)
	// Update, SetImageURL and Delete report the row as it was when the write
	// took it, which is what decides the list entries to drop.
	Update(ctx context.Context, serviceID string, req domain.UpdateServiceRequest) (before, after *domain.Service, err error)
	SetImageURL(ctx context.Context, serviceID, url string) (before, after *domain.Service, err error)
	Delete(ctx context.Context, serviceID string) (*domain.Service, error)
}

// bookingIndex finds the customers whose cached booking documents embed a service.
type bookingIndex interface {
	CustomerIDsByService(ctx context.Context, serviceID string) ([]string, error)
}

type imageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

type ServiceDeps struct {
	Repo     serviceStore
	Bookings bookingIndex
	Images   imageStore
	Cache    *cache.Cache
	TTL      cache.TTLs
	Logger   *slog.Logger
}

type service struct {
	repo     serviceStore
	bookings bookingIndex
	images   imageStore
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
		bookings: deps.Bookings,
		images:   deps.Images,
		cache:    deps.Cache,
		ttl:      deps.TTL,
		log:      log,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateServiceRequest) (*domain.Service, error) {
	status := req.Status
	if status == "" {
		status = domain.ServiceAvailable
	}
	created, err := s.repo.Create(ctx, &domain.Service{
		ID:       id.New(),
		Category: req.Category,
		Name:     req.Name,
		Price:    req.Price,
		Status:   status,
		Features: nonNil(req.Features),
		Details:  nonNil(req.Details),
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, listKeys(created.Category)...); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, serviceID string) (*domain.Service, error) {
	return cache.Read(ctx, s.cache, cache.ServiceKey(serviceID), s.ttl.Entity, func(ctx context.Context) (*domain.Service, error) {
		return s.repo.Get(ctx, serviceID)
	})
}

func (s *service) List(ctx context.Context) ([]domain.Service, error) {
	return cache.Read(ctx, s.cache, cache.AllServicesKey, s.ttl.List, s.repo.List)
}

// ListByCategory returns an empty list for a category with no services.
func (s *service) ListByCategory(ctx context.Context, category string) ([]domain.Service, error) {
	return cache.Read(ctx, s.cache, cache.ServicesByCategoryKey(category), s.ttl.List, func(ctx context.Context) ([]domain.Service, error) {
		return s.repo.ListByCategory(ctx, category)
	})
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return cache.Read(ctx, s.cache, cache.ServiceCategoriesKey, s.ttl.List, s.repo.Categories)
}

func (s *service) Update(ctx context.Context, serviceID string, req domain.UpdateServiceRequest) (*domain.Service, error) {
	if req.Empty() {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrValidation)
	}
	before, updated, err := s.repo.Update(ctx, serviceID, req)
	if err != nil {
		return nil, err
	}

	keys := append(listKeys(before.Category, updated.Category), cache.ServiceKey(serviceID))
	customers, err := s.bookings.CustomerIDsByService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	for _, cid := range customers {
		keys = append(keys, cache.BookingsByCustomerKey(cid))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete fails with domain.ErrConflict while bookings still reference the service.
func (s *service) Delete(ctx context.Context, serviceID string) error {
	deleted, err := s.repo.Delete(ctx, serviceID)
	if err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, append(listKeys(deleted.Category), cache.ServiceKey(serviceID))...); err != nil {
		return err
	}
	s.removeImage(ctx, deleted.ImageURL)
	return nil
}

func (s *service) Charges(ctx context.Context, serviceID string) (*domain.Charges, error) {
	svc, err := s.Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return &domain.Charges{
		BasePrice:      svc.Price,
		ConvenienceFee: domain.ConvenienceFee,
		Total:          svc.Price + domain.ConvenienceFee,
	}, nil
}

// UploadImage stores a new image under a fresh key, points the service at it
// and then drops the previous object.
func (s *service) UploadImage(ctx context.Context, serviceID string, img ImageUpload) (*domain.Service, error) {
	contentType, ok := s3infra.DetectContentType(img.Filename)
	if !ok {
		return nil, fmt.Errorf("unsupported image type %q: %w", path.Ext(img.Filename), domain.ErrValidation)
	}
	// Refuse unknown services before anything reaches the bucket.
	if _, err := s.repo.Get(ctx, serviceID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("services/%s/%s%s", serviceID, id.New(), strings.ToLower(path.Ext(img.Filename)))
	url, err := s.images.Upload(ctx, key, img.Reader, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w: %w", domain.ErrDependencyUnavailable, err)
	}
	before, updated, err := s.repo.SetImageURL(ctx, serviceID, url)
	if err != nil {
		s.removeImage(ctx, url)
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, append(listKeys(before.Category, updated.Category), cache.ServiceKey(serviceID))...); err != nil {
		return nil, err
	}
	s.removeImage(ctx, before.ImageURL)
	return updated, nil
}

func (s *service) removeImage(ctx context.Context, url string) {
	key, ok := s.images.KeyFromURL(url)
	if !ok {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete service image", "key", key, "err", err)
	}
}

// listKeys are the list entries a service in the given categories appears in.
func listKeys(categories ...string) []string {
	keys := []string{cache.AllServicesKey, cache.ServiceCategoriesKey}
	for _, c := range categories {
		keys = append(keys, cache.ServicesByCategoryKey(c))
	}
	return keys
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
