package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/go-carservice-api/internal/domain"
)

// PendingHolder stages the name submitted at registration until the OTP is verified.
type PendingHolder interface {
	Stage(ctx context.Context, kind domain.ActorKind, phone, name string) error
	TakeIfPresent(ctx context.Context, kind domain.ActorKind, phone string) (string, bool, error)
}

type pendingHolder struct {
	store store
	ttl   time.Duration
}

func NewPendingHolder(s store, ttl time.Duration) PendingHolder {
	return &pendingHolder{store: s, ttl: ttl}
}

// Stage overwrites any previously staged name and restarts its lifetime.
func (h *pendingHolder) Stage(ctx context.Context, kind domain.ActorKind, phone, name string) error {
	if err := h.store.Set(ctx, pendingKey(kind, phone), name, h.ttl); err != nil {
		return fmt.Errorf("stage registration: %w", err)
	}
	return nil
}

// TakeIfPresent returns the staged name and removes it.
func (h *pendingHolder) TakeIfPresent(ctx context.Context, kind domain.ActorKind, phone string) (string, bool, error) {
	key := pendingKey(kind, phone)
	name, ok, err := h.store.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("read pending registration: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	if err := h.store.Delete(ctx, key); err != nil {
		return "", false, fmt.Errorf("consume pending registration: %w", err)
	}
	return name, true, nil
}
