package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-carservice-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Store is the Redis-backed ephemeral key-value store used for OTP records,
// rate-limit counters, pending registrations and the read cache.
type Store struct {
	rdb redis.UniversalClient
}

func NewStore(rdb redis.UniversalClient) *Store {
	return &Store{rdb: rdb}
}

// Get returns the value under key. ok is false when the key is absent or expired.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return unavailable("del", keys[0], err)
	}
	return nil
}

// IncrementAndExpire increments the counter under key and re-arms its expiry
// to ttl in one MULTI/EXEC transaction, returning the new count.
func (s *Store) IncrementAndExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, unavailable("incr", key, err)
	}
	return incr.Val(), nil
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("redis %s %s: %w: %w", op, key, domain.ErrDependencyUnavailable, err)
}
