package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/go-carservice-api/internal/domain"
)

const codeDigits = 6

// store is the ephemeral key-value store backing codes, counters and pending registrations.
type store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	IncrementAndExpire(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Sender delivers a text message to a phone number.
type Sender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type Manager interface {
	RequestCode(ctx context.Context, phone string, purpose domain.Purpose) (*domain.Issuance, error)
	VerifyCode(ctx context.Context, phone string, purpose domain.Purpose, code string) error
}

// Policy holds the lifetimes and per-kind request ceilings.
type Policy struct {
	CodeTTL             time.Duration
	Window              time.Duration
	MaxRequestsAdmin    int
	MaxRequestsCustomer int
}

func (p Policy) ceiling(purpose domain.Purpose) int64 {
	if purpose.Kind() == domain.KindAdmin {
		return int64(p.MaxRequestsAdmin)
	}
	return int64(p.MaxRequestsCustomer)
}

type ManagerDeps struct {
	Store  store
	Sender Sender
	Policy Policy
	// FixedCode disables random generation. Never set outside tests.
	FixedCode string
	Logger    *slog.Logger
}

type manager struct {
	store    store
	sender   Sender
	policy   Policy
	generate func() (string, error)
	log      *slog.Logger
	now      func() time.Time
}

func NewManager(d ManagerDeps) Manager {
	m := &manager{
		store:    d.Store,
		sender:   d.Sender,
		policy:   d.Policy,
		generate: randomCode,
		log:      d.Logger,
		now:      time.Now,
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	if d.FixedCode != "" {
		fixed := d.FixedCode
		m.generate = func() (string, error) { return fixed, nil }
		m.log.Warn("otp fixed-code mode enabled; codes are not random")
	}
	return m
}

func (m *manager) RequestCode(ctx context.Context, phone string, purpose domain.Purpose) (*domain.Issuance, error) {
	ceiling := m.policy.ceiling(purpose)
	cKey := counterKey(phone, purpose)

	raw, ok, err := m.store.Get(ctx, cKey)
	if err != nil {
		return nil, fmt.Errorf("read otp counter: %w", err)
	}
	if ok {
		if n, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil && n >= ceiling {
			return nil, fmt.Errorf("%s: %w", purpose, domain.ErrRateLimited)
		}
	}

	count, err := m.store.IncrementAndExpire(ctx, cKey, m.policy.Window)
	if err != nil {
		return nil, fmt.Errorf("increment otp counter: %w", err)
	}
	// A concurrent request passed the read above at the same count. The loser
	// has already bumped the counter and re-armed the window; only requests
	// that race past the read can do that, a plain over-ceiling request never
	// reaches the increment.
	if count > ceiling {
		return nil, fmt.Errorf("%s: %w", purpose, domain.ErrRateLimited)
	}

	code, err := m.generate()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	key := codeKey(phone, purpose)
	if err := m.store.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("clear previous otp: %w", err)
	}
	if err := m.store.Set(ctx, key, code, m.policy.CodeTTL); err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	if err := m.sender.SendSMS(ctx, phone, message(code)); err != nil {
		if delErr := m.store.Delete(ctx, key); delErr != nil {
			m.log.Warn("failed to remove undelivered otp", "purpose", purpose, "err", delErr)
		}
		m.log.Error("otp dispatch failed", "purpose", purpose, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}

	return &domain.Issuance{Purpose: purpose, ExpiresAt: m.now().Add(m.policy.CodeTTL)}, nil
}

func (m *manager) VerifyCode(ctx context.Context, phone string, purpose domain.Purpose, code string) error {
	key := codeKey(phone, purpose)
	stored, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read otp: %w", err)
	}
	if !ok || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return domain.ErrInvalidOrExpiredCode
	}
	if err := m.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}

func message(code string) string {
	return fmt.Sprintf("Your verification code is %s", code)
}

// randomCode returns a zero-padded code uniform over 000000-999999.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
