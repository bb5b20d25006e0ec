package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-carservice-api/internal/application/otp"
	"github.com/go-carservice-api/internal/domain"
	redisstore "github.com/go-carservice-api/internal/infrastructure/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockActorStore struct{ mock.Mock }

func (m *mockActorStore) GetByPhone(ctx context.Context, phone string) (*domain.Actor, error) {
	args := m.Called(ctx, phone)
	if a, _ := args.Get(0).(*domain.Actor); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockActorStore) Create(ctx context.Context, a *domain.Actor) (*domain.Actor, error) {
	args := m.Called(ctx, a)
	if out, _ := args.Get(0).(*domain.Actor); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) Issue(subjectID, role string) (string, time.Time, error) {
	args := m.Called(subjectID, role)
	exp, _ := args.Get(1).(time.Time)
	return args.String(0), exp, args.Error(2)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

// --- builder ---

const (
	phone     = "9999999999"
	code      = "123456"
	adminPass = "let-me-in"
)

type fixture struct {
	svc       Service
	admins    *mockActorStore
	customers *mockActorStore
	issuer    *mockIssuer
	sender    *mockSender
	mr        *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := redisstore.NewStore(rdb)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		admins:    &mockActorStore{},
		customers: &mockActorStore{},
		issuer:    &mockIssuer{},
		sender:    &mockSender{},
		mr:        mr,
	}
	f.sender.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.svc = NewService(ServiceDeps{
		Admins:    f.admins,
		Customers: f.customers,
		OTP: otp.NewManager(otp.ManagerDeps{
			Store:  store,
			Sender: f.sender,
			Policy: otp.Policy{
				CodeTTL:             300 * time.Second,
				Window:              7200 * time.Second,
				MaxRequestsAdmin:    10,
				MaxRequestsCustomer: 100,
			},
			FixedCode: code,
		}),
		Pending:         otp.NewPendingHolder(store, 300*time.Second),
		Issuer:          f.issuer,
		AdminSecretHash: string(hash),
	})
	return f
}

func verify(otpCode string) domain.VerifyOTPRequest {
	return domain.VerifyOTPRequest{PhoneNumber: phone, OTP: otpCode}
}

// --- registration ---

func TestRegistration_CustomerHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	exp := time.Now().Add(7 * 24 * time.Hour)

	f.customers.On("GetByPhone", mock.Anything, phone).Return(nil, domain.ErrNotFound)
	f.customers.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Actor) bool {
		return a.PhoneNumber == phone && a.Name == "Asha" && a.Role == domain.RoleCustomer && len(a.ID) == 16
	})).Return(&domain.Actor{ID: "c1", PhoneNumber: phone, Name: "Asha", Role: domain.RoleCustomer}, nil)
	f.issuer.On("Issue", "c1", domain.RoleCustomer).Return("tok", exp, nil)

	iss, err := f.svc.RequestRegistration(ctx, domain.KindCustomer, domain.RegisterRequest{PhoneNumber: phone, Name: "Asha"})
	require.NoError(t, err)
	assert.Equal(t, domain.PurposeCustomerRegister, iss.Purpose)

	sess, err := f.svc.VerifyRegistration(ctx, domain.KindCustomer, verify(code))
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, exp, sess.ExpiresAt)
	assert.Equal(t, "c1", sess.Actor.ID)

	assert.False(t, f.mr.Exists("pending_customer:"+phone))
	assert.False(t, f.mr.Exists("otp:customer-register:"+phone))
}

func TestRequestRegistration_ExistingPhone_Conflict(t *testing.T) {
	f := newFixture(t)
	f.customers.On("GetByPhone", mock.Anything, phone).Return(&domain.Actor{ID: "c1"}, nil)

	_, err := f.svc.RequestRegistration(context.Background(), domain.KindCustomer, domain.RegisterRequest{PhoneNumber: phone, Name: "Asha"})

	assert.ErrorIs(t, err, domain.ErrConflict)
	f.sender.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, f.mr.Exists("pending_customer:"+phone))
}

func TestRequestRegistration_LookupFailure(t *testing.T) {
	f := newFixture(t)
	f.customers.On("GetByPhone", mock.Anything, phone).Return(nil, fmt.Errorf("db: %w", domain.ErrDependencyUnavailable))

	_, err := f.svc.RequestRegistration(context.Background(), domain.KindCustomer, domain.RegisterRequest{PhoneNumber: phone, Name: "Asha"})
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
}

func TestRequestRegistration_AdminSecret(t *testing.T) {
	tests := []struct {
		name    string
		pass    string
		wantErr error
	}{
		{name: "missing", pass: "", wantErr: domain.ErrForbidden},
		{name: "wrong", pass: "guess", wantErr: domain.ErrForbidden},
		{name: "correct", pass: adminPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.admins.On("GetByPhone", mock.Anything, phone).Return(nil, domain.ErrNotFound)

			_, err := f.svc.RequestRegistration(context.Background(), domain.KindAdmin,
				domain.RegisterRequest{PhoneNumber: phone, Name: "Root", SecretPass: tt.pass})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.admins.AssertNotCalled(t, "GetByPhone", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.True(t, f.mr.Exists("otp:admin-register:"+phone))
		})
	}
}

func TestVerifyRegistration_PendingExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.customers.On("GetByPhone", mock.Anything, phone).Return(nil, domain.ErrNotFound)

	_, err := f.svc.RequestRegistration(ctx, domain.KindCustomer, domain.RegisterRequest{PhoneNumber: phone, Name: "Asha"})
	require.NoError(t, err)
	// The pending entry lapses while the code is still live.
	f.mr.Del("pending_customer:" + phone)

	_, err = f.svc.VerifyRegistration(ctx, domain.KindCustomer, verify(code))
	assert.ErrorIs(t, err, domain.ErrRegistrationSessionExpired)
	f.customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestVerifyRegistration_WrongCode_KeepsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.customers.On("GetByPhone", mock.Anything, phone).Return(nil, domain.ErrNotFound)

	_, err := f.svc.RequestRegistration(ctx, domain.KindCustomer, domain.RegisterRequest{PhoneNumber: phone, Name: "Asha"})
	require.NoError(t, err)

	_, err = f.svc.VerifyRegistration(ctx, domain.KindCustomer, verify("000000"))
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
	assert.True(t, f.mr.Exists("pending_customer:"+phone))
}

func TestVerifyRegistration_AfterTTL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.customers.On("GetByPhone", mock.Anything, phone).Return(nil, domain.ErrNotFound)

	_, err := f.svc.RequestRegistration(ctx, domain.KindCustomer, domain.RegisterRequest{PhoneNumber: phone, Name: "Asha"})
	require.NoError(t, err)
	f.mr.FastForward(301 * time.Second)

	_, err = f.svc.VerifyRegistration(ctx, domain.KindCustomer, verify(code))
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
}

func TestVerifyRegistration_RaceLostOnInsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.customers.On("GetByPhone", mock.Anything, phone).Return(nil, domain.ErrNotFound)
	f.customers.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	_, err := f.svc.RequestRegistration(ctx, domain.KindCustomer, domain.RegisterRequest{PhoneNumber: phone, Name: "Asha"})
	require.NoError(t, err)

	_, err = f.svc.VerifyRegistration(ctx, domain.KindCustomer, verify(code))
	assert.ErrorIs(t, err, domain.ErrConflict)
	f.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

// --- login ---

func TestLogin_CustomerScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := &domain.Actor{ID: "c1", PhoneNumber: phone, Role: domain.RoleCustomer}
	f.customers.On("GetByPhone", mock.Anything, phone).Return(actor, nil)
	f.issuer.On("Issue", "c1", domain.RoleCustomer).Return("tok", time.Now(), nil)

	_, err := f.svc.RequestLogin(ctx, domain.KindCustomer, domain.LoginRequest{PhoneNumber: phone})
	require.NoError(t, err)

	_, err = f.svc.VerifyLogin(ctx, domain.KindCustomer, verify("654321"))
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
	assert.True(t, f.mr.Exists("otp:customer-login:"+phone), "a wrong code leaves the record in place")

	sess, err := f.svc.VerifyLogin(ctx, domain.KindCustomer, verify(code))
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)

	_, err = f.svc.VerifyLogin(ctx, domain.KindCustomer, verify(code))
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
	f.issuer.AssertNumberOfCalls(t, "Issue", 1)
}

func TestRequestLogin_UnknownPhone(t *testing.T) {
	f := newFixture(t)
	f.admins.On("GetByPhone", mock.Anything, phone).Return(nil, domain.ErrNotFound)

	_, err := f.svc.RequestLogin(context.Background(), domain.KindAdmin, domain.LoginRequest{PhoneNumber: phone})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.sender.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_CodesAreScopedByKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.customers.On("GetByPhone", mock.Anything, phone).Return(&domain.Actor{ID: "c1", Role: domain.RoleCustomer}, nil)

	_, err := f.svc.RequestLogin(ctx, domain.KindCustomer, domain.LoginRequest{PhoneNumber: phone})
	require.NoError(t, err)

	_, err = f.svc.VerifyLogin(ctx, domain.KindAdmin, verify(code))
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
}

func TestVerifyLogin_IssuerFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.admins.On("GetByPhone", mock.Anything, phone).Return(&domain.Actor{ID: "a1", Role: domain.RoleAdmin}, nil)
	f.issuer.On("Issue", "a1", domain.RoleAdmin).Return("", nil, errors.New("no key"))

	_, err := f.svc.RequestLogin(ctx, domain.KindAdmin, domain.LoginRequest{PhoneNumber: phone})
	require.NoError(t, err)

	_, err = f.svc.VerifyLogin(ctx, domain.KindAdmin, verify(code))
	assert.ErrorContains(t, err, "issue session")
}

func TestUnknownKind(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RequestLogin(context.Background(), domain.ActorKind("mechanic"), domain.LoginRequest{PhoneNumber: phone})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
