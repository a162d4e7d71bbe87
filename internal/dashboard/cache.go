package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "dashboard:version"

// Cache stores dashboard sections in Redis under a global version. Bumping the
// version orphans every cached section, which then expires by TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SETNX keeps a concurrent first bump intact.
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// Key composes dashboard:v{version}:{section}.
func (c *Cache) Key(ctx context.Context, section string) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("dashboard:v%d:%s", ver, section), nil
}

// FetchJSON decodes the cached section into dest or fills it with loader.
// Redis failures degrade to calling loader directly.
func (c *Cache) FetchJSON(ctx context.Context, section string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("dashboard: cache loader required")
	}
	if c == nil || c.client == nil {
		return load(ctx, dest, loader, nil)
	}
	key, err := c.Key(ctx, section)
	if err != nil {
		c.logger.Warn("dashboard cache version", slog.Any("error", err))
		return load(ctx, dest, loader, nil)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Warn("dashboard cache read", slog.String("key", key), slog.Any("error", err))
		return load(ctx, dest, loader, nil)
	}
	return load(ctx, dest, loader, func(raw []byte) {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("dashboard cache write", slog.String("key", key), slog.Any("error", err))
		}
	})
}

func load(ctx context.Context, dest any, loader func(context.Context) (any, error), store func([]byte)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if store != nil {
		store(raw)
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached section by incrementing the version.
func (c *Cache) Bump(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	if _, err := c.Version(ctx); err != nil {
		return 0, err
	}
	return c.client.Incr(ctx, cacheVersionKey).Result()
}
