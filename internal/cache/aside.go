package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"empleos/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON loads key into dst. It reports false on a miss, a decode failure
// or when no client is configured.
func GetJSON(ctx context.Context, key string, dst any) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		client.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores value under key for ttl. Failures are logged, not returned.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		slog.WarnContext(ctx, "cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		slog.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Aside serves dst from the cache, or calls fetch to fill dst and then
// stores the result. fetch errors are returned and nothing is cached.
func Aside(ctx context.Context, key string, dst any, ttl time.Duration, fetch func() error) error {
	family := keyFamily(key)
	if GetJSON(ctx, key, dst) {
		observability.CacheLookups.WithLabelValues(family, "hit").Inc()
		return nil
	}
	observability.CacheLookups.WithLabelValues(family, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}
	SetJSON(ctx, key, dst, ttl)
	return nil
}

// Invalidate deletes key. It is a no-op without a client.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}
