package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-carservice-api/internal/application/otp"
	"github.com/go-carservice-api/internal/domain"
	"github.com/go-carservice-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// Service runs the two-step OTP flows that end in a session credential.
// Every method takes the actor kind, which selects the table, the OTP
// purposes and the role written into the credential.
type Service interface {
	RequestRegistration(ctx context.Context, kind domain.ActorKind, req domain.RegisterRequest) (*domain.Issuance, error)
	VerifyRegistration(ctx context.Context, kind domain.ActorKind, req domain.VerifyOTPRequest) (*domain.Session, error)
	RequestLogin(ctx context.Context, kind domain.ActorKind, req domain.LoginRequest) (*domain.Issuance, error)
	VerifyLogin(ctx context.Context, kind domain.ActorKind, req domain.VerifyOTPRequest) (*domain.Session, error)
}

type actorStore interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Actor, error)
	Create(ctx context.Context, a *domain.Actor) (*domain.Actor, error)
}

type tokenIssuer interface {
	Issue(subjectID, role string) (string, time.Time, error)
}

type ServiceDeps struct {
	Admins    actorStore
	Customers actorStore
	OTP       otp.Manager
	Pending   otp.PendingHolder
	Issuer    tokenIssuer
	// AdminSecretHash is the bcrypt hash every admin registration must match.
	AdminSecretHash string
	Logger          *slog.Logger
}

type service struct {
	admins          actorStore
	customers       actorStore
	otp             otp.Manager
	pending         otp.PendingHolder
	issuer          tokenIssuer
	adminSecretHash []byte
	log             *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &service{
		admins:          deps.Admins,
		customers:       deps.Customers,
		otp:             deps.OTP,
		pending:         deps.Pending,
		issuer:          deps.Issuer,
		adminSecretHash: []byte(deps.AdminSecretHash),
		log:             log,
	}
}

func (s *service) actors(kind domain.ActorKind) (actorStore, error) {
	switch kind {
	case domain.KindAdmin:
		return s.admins, nil
	case domain.KindCustomer:
		return s.customers, nil
	default:
		return nil, fmt.Errorf("unknown actor kind %q: %w", kind, domain.ErrValidation)
	}
}

func (s *service) RequestRegistration(ctx context.Context, kind domain.ActorKind, req domain.RegisterRequest) (*domain.Issuance, error) {
	repo, err := s.actors(kind)
	if err != nil {
		return nil, err
	}
	if kind == domain.KindAdmin {
		if err := s.checkAdminSecret(req.SecretPass); err != nil {
			return nil, err
		}
	}

	_, err = repo.GetByPhone(ctx, req.PhoneNumber)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s already registered: %w", kind, domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	// The name is staged first so that a delivered code always has a pending entry to complete.
	if err := s.pending.Stage(ctx, kind, req.PhoneNumber, req.Name); err != nil {
		return nil, err
	}
	return s.otp.RequestCode(ctx, req.PhoneNumber, domain.RegisterPurpose(kind))
}

func (s *service) VerifyRegistration(ctx context.Context, kind domain.ActorKind, req domain.VerifyOTPRequest) (*domain.Session, error) {
	repo, err := s.actors(kind)
	if err != nil {
		return nil, err
	}
	if err := s.otp.VerifyCode(ctx, req.PhoneNumber, domain.RegisterPurpose(kind), req.OTP); err != nil {
		return nil, err
	}
	name, ok, err := s.pending.TakeIfPresent(ctx, kind, req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrRegistrationSessionExpired
	}

	a, err := repo.Create(ctx, &domain.Actor{
		ID:          id.New(),
		PhoneNumber: req.PhoneNumber,
		Name:        name,
		Role:        kind.Role(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("actor registered", "kind", kind, "id", a.ID)
	return s.session(a)
}

func (s *service) RequestLogin(ctx context.Context, kind domain.ActorKind, req domain.LoginRequest) (*domain.Issuance, error) {
	repo, err := s.actors(kind)
	if err != nil {
		return nil, err
	}
	if _, err := repo.GetByPhone(ctx, req.PhoneNumber); err != nil {
		return nil, err
	}
	return s.otp.RequestCode(ctx, req.PhoneNumber, domain.LoginPurpose(kind))
}

func (s *service) VerifyLogin(ctx context.Context, kind domain.ActorKind, req domain.VerifyOTPRequest) (*domain.Session, error) {
	repo, err := s.actors(kind)
	if err != nil {
		return nil, err
	}
	if err := s.otp.VerifyCode(ctx, req.PhoneNumber, domain.LoginPurpose(kind), req.OTP); err != nil {
		return nil, err
	}
	a, err := repo.GetByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	return s.session(a)
}

func (s *service) session(a *domain.Actor) (*domain.Session, error) {
	token, exp, err := s.issuer.Issue(a.ID, a.Role)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &domain.Session{Token: token, ExpiresAt: exp, Actor: a}, nil
}

func (s *service) checkAdminSecret(pass string) error {
	if len(s.adminSecretHash) == 0 || pass == "" {
		return fmt.Errorf("admin secret required: %w", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword(s.adminSecretHash, []byte(pass)); err != nil {
		return fmt.Errorf("admin secret mismatch: %w", domain.ErrForbidden)
	}
	return nil
}
