package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-carservice-api/internal/domain"
)

type store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Cache is a read-through, write-invalidate layer over the ephemeral store.
// It is never the source of truth: any entry may be dropped at any time.
type Cache struct {
	store store
	log   *slog.Logger
}

func New(s store, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{store: s, log: log}
}

// Read returns the cached value under key, or calls load and caches its result for ttl.
// A load error is returned as is and nothing is cached, so a singular lookup
// that yields domain.ErrNotFound is re-checked on the next read. An empty list
// is a successful load and is cached like any other value.
// Cache failures degrade to a direct load.
func Read[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	raw, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.log.Warn("cache read failed, loading from store", "key", key, "err", err)
	case ok:
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v, nil
		}
		c.log.Warn("discarding undecodable cache entry", "key", key)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	b, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", "key", key, "err", err)
		return v, nil
	}
	if err := c.store.Set(ctx, key, string(b), ttl); err != nil {
		c.log.Warn("cache populate failed", "key", key, "err", err)
	}
	return v, nil
}

// Invalidate deletes every given key. Writers call it after their commit and
// before acknowledging; a failure means stale entries may survive until TTL and is reported.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	uniq := dedupe(keys)
	if len(uniq) == 0 {
		return nil
	}
	if err := c.store.Delete(ctx, uniq...); err != nil {
		c.log.Error("cache invalidation failed", "keys", uniq, "err", err)
		if errors.Is(err, domain.ErrDependencyUnavailable) {
			return fmt.Errorf("invalidate cache: %w", err)
		}
		return fmt.Errorf("invalidate cache: %w: %v", domain.ErrDependencyUnavailable, err)
	}
	return nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// TTLs are the lifetimes of singular entries and of list entries.
type TTLs struct {
	Entity time.Duration
	List   time.Duration
}
