package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-carservice-api/internal/cache"
	"github.com/go-carservice-api/internal/domain"
	redisstore "github.com/go-carservice-api/internal/infrastructure/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockServiceStore struct{ mock.Mock }

func (m *mockServiceStore) one(args mock.Arguments) (*domain.Service, error) {
	if s, _ := args.Get(0).(*domain.Service); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockServiceStore) Create(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	return m.one(m.Called(ctx, s))
}
func (m *mockServiceStore) Get(ctx context.Context, id string) (*domain.Service, error) {
	return m.one(m.Called(ctx, id))
}
func (m *mockServiceStore) List(ctx context.Context) ([]domain.Service, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]domain.Service)
	return out, args.Error(1)
}
func (m *mockServiceStore) ListByCategory(ctx context.Context, category string) ([]domain.Service, error) {
	args := m.Called(ctx, category)
	out, _ := args.Get(0).([]domain.Service)
	return out, args.Error(1)
}
func (m *mockServiceStore) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]string)
	return out, args.Error(1)
}
func (m *mockServiceStore) pair(args mock.Arguments) (*domain.Service, *domain.Service, error) {
	before, _ := args.Get(0).(*domain.Service)
	after, _ := args.Get(1).(*domain.Service)
	return before, after, args.Error(2)
}
func (m *mockServiceStore) Update(ctx context.Context, id string, req domain.UpdateServiceRequest) (*domain.Service, *domain.Service, error) {
	return m.pair(m.Called(ctx, id, req))
}
func (m *mockServiceStore) SetImageURL(ctx context.Context, id, url string) (*domain.Service, *domain.Service, error) {
	return m.pair(m.Called(ctx, id, url))
}
func (m *mockServiceStore) Delete(ctx context.Context, id string) (*domain.Service, error) {
	return m.one(m.Called(ctx, id))
}

type mockBookingIndex struct{ mock.Mock }

func (m *mockBookingIndex) CustomerIDsByService(ctx context.Context, serviceID string) ([]string, error) {
	args := m.Called(ctx, serviceID)
	out, _ := args.Get(0).([]string)
	return out, args.Error(1)
}

type mockImageStore struct{ mock.Mock }

func (m *mockImageStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}
func (m *mockImageStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
func (m *mockImageStore) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, "https://img/")
	return key, ok && key != ""
}

// --- builder ---

type fixture struct {
	svc      Service
	repo     *mockServiceStore
	bookings *mockBookingIndex
	images   *mockImageStore
	mr       *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &fixture{repo: &mockServiceStore{}, bookings: &mockBookingIndex{}, images: &mockImageStore{}, mr: mr}
	f.svc = NewService(ServiceDeps{
		Repo:     f.repo,
		Bookings: f.bookings,
		Images:   f.images,
		Cache:    cache.New(redisstore.NewStore(rdb), nil),
		TTL:      cache.TTLs{Entity: time.Hour, List: 24 * time.Hour},
	})
	return f
}

func strPtr(s string) *string { return &s }

func wash() *domain.Service {
	return &domain.Service{ID: "s1", Category: "Wash", Name: "Foam wash", Price: 499, Status: domain.ServiceAvailable}
}

// --- reads ---

func TestGet_SecondReadIsServedFromCache(t *testing.T) {
	f := newFixture(t)
	f.repo.On("Get", mock.Anything, "s1").Return(wash(), nil).Once()

	for range 2 {
		got, err := f.svc.Get(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "Foam wash", got.Name)
	}
	f.repo.AssertNumberOfCalls(t, "Get", 1)
	assert.True(t, f.mr.Exists("service:s1"))
}

func TestGet_NotFoundIsNotCached(t *testing.T) {
	f := newFixture(t)
	f.repo.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	_, err := f.svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, f.mr.Exists("service:ghost"))
}

func TestListByCategory_EmptyIsCached(t *testing.T) {
	f := newFixture(t)
	f.repo.On("ListByCategory", mock.Anything, "Tyres").Return([]domain.Service{}, nil).Once()

	for range 2 {
		got, err := f.svc.ListByCategory(context.Background(), "Tyres")
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	f.repo.AssertNumberOfCalls(t, "ListByCategory", 1)
}

func TestCharges(t *testing.T) {
	f := newFixture(t)
	f.repo.On("Get", mock.Anything, "s1").Return(wash(), nil)

	got, err := f.svc.Charges(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, &domain.Charges{BasePrice: 499, ConvenienceFee: 100, Total: 599}, got)
}

// --- writes ---

func TestCreate_DefaultsAndInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mr.Set("services", "[]")
	f.mr.Set("service_categories", "[]")
	f.mr.Set("services_by_category:Wash", "[]")
	f.mr.Set("services_by_category:Detailing", "[]")

	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Service) bool {
		return s.Status == domain.ServiceAvailable && s.Features != nil && s.Details != nil && len(s.ID) == 16
	})).Return(wash(), nil)

	_, err := f.svc.Create(ctx, domain.CreateServiceRequest{Category: "Wash", Name: "Foam wash", Price: 499})
	require.NoError(t, err)

	assert.False(t, f.mr.Exists("services"))
	assert.False(t, f.mr.Exists("service_categories"))
	assert.False(t, f.mr.Exists("services_by_category:Wash"))
	assert.True(t, f.mr.Exists("services_by_category:Detailing"))
}

func TestUpdate_CategoryMoveInvalidatesBothLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	detailing := &domain.Service{ID: "s1", Category: "Detailing", Name: "Polish", Price: 999}
	moved := &domain.Service{ID: "s1", Category: "Wash", Name: "Polish", Price: 999}
	req := domain.UpdateServiceRequest{Category: strPtr("Wash")}

	f.repo.On("ListByCategory", mock.Anything, "Detailing").Return([]domain.Service{*detailing}, nil).Once()
	f.repo.On("ListByCategory", mock.Anything, "Detailing").Return([]domain.Service{}, nil).Once()
	f.repo.On("ListByCategory", mock.Anything, "Wash").Return([]domain.Service{}, nil).Once()
	f.repo.On("ListByCategory", mock.Anything, "Wash").Return([]domain.Service{*moved}, nil).Once()
	f.repo.On("Categories", mock.Anything).Return([]string{"Detailing"}, nil).Once()
	f.repo.On("Categories", mock.Anything).Return([]string{"Wash"}, nil).Once()
	f.repo.On("Update", mock.Anything, "s1", req).Return(detailing, moved, nil)
	f.bookings.On("CustomerIDsByService", mock.Anything, "s1").Return([]string{"c1", "c2"}, nil)

	// Warm every entry the move affects.
	_, err := f.svc.ListByCategory(ctx, "Detailing")
	require.NoError(t, err)
	_, err = f.svc.ListByCategory(ctx, "Wash")
	require.NoError(t, err)
	_, err = f.svc.Categories(ctx)
	require.NoError(t, err)
	f.mr.Set("bookings_by_customer:c1", "[]")
	f.mr.Set("bookings_by_customer:c2", "[]")
	f.mr.Set("bookings_by_customer:c3", "[]")

	_, err = f.svc.Update(ctx, "s1", req)
	require.NoError(t, err)

	oldList, err := f.svc.ListByCategory(ctx, "Detailing")
	require.NoError(t, err)
	assert.Empty(t, oldList)
	newList, err := f.svc.ListByCategory(ctx, "Wash")
	require.NoError(t, err)
	require.Len(t, newList, 1)
	assert.Equal(t, "s1", newList[0].ID)
	cats, err := f.svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wash"}, cats)

	assert.False(t, f.mr.Exists("bookings_by_customer:c1"))
	assert.False(t, f.mr.Exists("bookings_by_customer:c2"))
	assert.True(t, f.mr.Exists("bookings_by_customer:c3"))
}

func TestUpdate_EmptyRequest(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Update(context.Background(), "s1", domain.UpdateServiceRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)
	f.repo.On("Update", mock.Anything, "ghost", mock.Anything).Return(nil, nil, domain.ErrNotFound)

	_, err := f.svc.Update(context.Background(), "ghost", domain.UpdateServiceRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_CacheDownIsReported(t *testing.T) {
	f := newFixture(t)
	req := domain.UpdateServiceRequest{Name: strPtr("Deluxe")}
	f.repo.On("Update", mock.Anything, "s1", req).Return(wash(), wash(), nil)
	f.bookings.On("CustomerIDsByService", mock.Anything, "s1").Return([]string(nil), nil)
	f.mr.Close()

	_, err := f.svc.Update(context.Background(), "s1", req)
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
}

func TestDelete_Referenced(t *testing.T) {
	f := newFixture(t)
	f.mr.Set("service:s1", `{"id":"s1"}`)
	f.repo.On("Delete", mock.Anything, "s1").Return(nil, domain.ErrConflict)

	err := f.svc.Delete(context.Background(), "s1")

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, f.mr.Exists("service:s1"))
}

func TestDelete_DropsEntriesAndImage(t *testing.T) {
	f := newFixture(t)
	svc := wash()
	svc.ImageURL = "https://img/services/s1/old.png"
	f.mr.Set("service:s1", `{"id":"s1"}`)
	f.mr.Set("services_by_category:Wash", "[]")
	f.repo.On("Delete", mock.Anything, "s1").Return(svc, nil)
	f.images.On("Delete", mock.Anything, "services/s1/old.png").Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), "s1"))
	assert.False(t, f.mr.Exists("service:s1"))
	assert.False(t, f.mr.Exists("services_by_category:Wash"))
	f.images.AssertExpectations(t)
}

// --- images ---

func TestUploadImage_ReplacesPrevious(t *testing.T) {
	f := newFixture(t)
	old := wash()
	old.ImageURL = "https://img/services/s1/old.png"
	withImage := wash()
	withImage.ImageURL = "https://img/services/s1/new.jpg"
	f.mr.Set("service:s1", `{"id":"s1"}`)

	f.repo.On("Get", mock.Anything, "s1").Return(wash(), nil)
	f.images.On("Upload", mock.Anything, mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, "services/s1/") && strings.HasSuffix(k, ".jpg")
	}), mock.Anything, "image/jpeg").Return(withImage.ImageURL, nil)
	f.repo.On("SetImageURL", mock.Anything, "s1", withImage.ImageURL).Return(old, withImage, nil)
	f.images.On("Delete", mock.Anything, "services/s1/old.png").Return(errors.New("gone"))

	got, err := f.svc.UploadImage(context.Background(), "s1", ImageUpload{Reader: strings.NewReader("jpg"), Filename: "front.JPG"})

	require.NoError(t, err)
	assert.Equal(t, withImage.ImageURL, got.ImageURL)
	assert.False(t, f.mr.Exists("service:s1"))
	f.images.AssertExpectations(t)
}

func TestUploadImage_UnsupportedType(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UploadImage(context.Background(), "s1", ImageUpload{Reader: strings.NewReader(""), Filename: "menu.pdf"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	f.repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestUploadImage_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.On("Get", mock.Anything, "s1").Return(wash(), nil)
	f.images.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("s3 down"))

	_, err := f.svc.UploadImage(context.Background(), "s1", ImageUpload{Reader: strings.NewReader(""), Filename: "a.png"})

	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
	f.repo.AssertNotCalled(t, "SetImageURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadImage_RowGoneRemovesUpload(t *testing.T) {
	f := newFixture(t)
	url := "https://img/services/s1/new.png"
	f.repo.On("Get", mock.Anything, "s1").Return(wash(), nil)
	f.images.On("Upload", mock.Anything, mock.Anything, mock.Anything, "image/png").Return(url, nil)
	f.repo.On("SetImageURL", mock.Anything, "s1", url).Return(nil, nil, domain.ErrNotFound)
	f.images.On("Delete", mock.Anything, "services/s1/new.png").Return(nil)

	_, err := f.svc.UploadImage(context.Background(), "s1", ImageUpload{Reader: strings.NewReader("png"), Filename: "a.png"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.images.AssertExpectations(t)
}

// --- interleaved writers ---

// memServiceStore keeps one table in memory. Writes read the old row and
// apply the change under one lock, the way the row-locking repository does.
type memServiceStore struct {
	mu   sync.Mutex
	rows map[string]domain.Service
	// beforeWrite runs once at the start of the next write, before the lock.
	beforeWrite func()
}

func (m *memServiceStore) hook() {
	if fn := m.beforeWrite; fn != nil {
		m.beforeWrite = nil
		fn()
	}
}

func (m *memServiceStore) Create(_ context.Context, s *domain.Service) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.ID] = *s
	out := *s
	return &out, nil
}
func (m *memServiceStore) Get(_ context.Context, id string) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}
func (m *memServiceStore) List(context.Context) ([]domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Service{}
	for _, s := range m.rows {
		out = append(out, s)
	}
	return out, nil
}
func (m *memServiceStore) ListByCategory(_ context.Context, category string) ([]domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Service{}
	for _, s := range m.rows {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out, nil
}
func (m *memServiceStore) Categories(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, s := range m.rows {
		if !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	return out, nil
}
func (m *memServiceStore) Update(_ context.Context, id string, req domain.UpdateServiceRequest) (*domain.Service, *domain.Service, error) {
	m.hook()
	m.mu.Lock()
	defer m.mu.Unlock()
	before, ok := m.rows[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	after := before
	if req.Category != nil {
		after.Category = *req.Category
	}
	if req.Name != nil {
		after.Name = *req.Name
	}
	m.rows[id] = after
	return &before, &after, nil
}
func (m *memServiceStore) SetImageURL(_ context.Context, id, url string) (*domain.Service, *domain.Service, error) {
	m.hook()
	m.mu.Lock()
	defer m.mu.Unlock()
	before, ok := m.rows[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	after := before
	after.ImageURL = url
	m.rows[id] = after
	return &before, &after, nil
}
func (m *memServiceStore) Delete(_ context.Context, id string) (*domain.Service, error) {
	m.hook()
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(m.rows, id)
	return &s, nil
}

func newMemFixture(t *testing.T) (Service, *memServiceStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := &memServiceStore{rows: map[string]domain.Service{
		"s1": {ID: "s1", Category: "A", Name: "Polish", Price: 999},
	}}
	bookings := &mockBookingIndex{}
	bookings.On("CustomerIDsByService", mock.Anything, mock.Anything).Return([]string(nil), nil)
	svc := NewService(ServiceDeps{
		Repo:     store,
		Bookings: bookings,
		Images:   &mockImageStore{},
		Cache:    cache.New(redisstore.NewStore(rdb), nil),
		TTL:      cache.TTLs{Entity: time.Hour, List: 24 * time.Hour},
	})
	return svc, store
}

func TestUpdate_InterleavedMovesLeaveNoStaleList(t *testing.T) {
	svc, store := newMemFixture(t)
	ctx := context.Background()

	// Writer 2 (A to C) has started; writer 1 (A to B) commits and a reader
	// warms the B list before writer 2 reaches the row.
	store.beforeWrite = func() {
		_, err := svc.Update(ctx, "s1", domain.UpdateServiceRequest{Category: strPtr("B")})
		require.NoError(t, err)
		warm, err := svc.ListByCategory(ctx, "B")
		require.NoError(t, err)
		require.Len(t, warm, 1)
	}
	_, err := svc.Update(ctx, "s1", domain.UpdateServiceRequest{Category: strPtr("C")})
	require.NoError(t, err)

	b, err := svc.ListByCategory(ctx, "B")
	require.NoError(t, err)
	assert.Empty(t, b)
	c, err := svc.ListByCategory(ctx, "C")
	require.NoError(t, err)
	require.Len(t, c, 1)
	assert.Equal(t, "C", c[0].Category)
}

func TestDelete_AfterInterleavedMoveDropsNewList(t *testing.T) {
	svc, store := newMemFixture(t)
	ctx := context.Background()

	store.beforeWrite = func() {
		_, err := svc.Update(ctx, "s1", domain.UpdateServiceRequest{Category: strPtr("B")})
		require.NoError(t, err)
		_, err = svc.ListByCategory(ctx, "B")
		require.NoError(t, err)
	}
	require.NoError(t, svc.Delete(ctx, "s1"))

	b, err := svc.ListByCategory(ctx, "B")
	require.NoError(t, err)
	assert.Empty(t, b)
}
