package shared

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrIdempotencyConflict indicates the key was already claimed.
var ErrIdempotencyConflict = errors.New("idempotent request already processed")

// IdempotencyStore claims keys in Redis so repeated job runs act once per window.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore constructs the store. Keys are namespaced under prefix.
func NewIdempotencyStore(client *redis.Client, prefix string) *IdempotencyStore {
	if prefix == "" {
		prefix = "idem"
	}
	return &IdempotencyStore{client: client, prefix: prefix}
}

// Claim records key for module until ttl elapses. It returns
// ErrIdempotencyConflict when another caller already holds the key.
func (s *IdempotencyStore) Claim(ctx context.Context, module, key string, ttl time.Duration) error {
	if s == nil || s.client == nil {
		return errors.New("idempotency store not initialised")
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	if module == "" {
		return errors.New("idempotency module required")
	}
	ok, err := s.client.SetNX(ctx, s.redisKey(module, key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrIdempotencyConflict
	}
	return nil
}

// Release removes a claim, typically after the guarded work failed.
func (s *IdempotencyStore) Release(ctx context.Context, module, key string) error {
	if s == nil || s.client == nil {
		return nil
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	err := s.client.Del(ctx, s.redisKey(module, key)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (s *IdempotencyStore) redisKey(module, key string) string {
	return s.prefix + ":" + module + ":" + key
}
