package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "rmb:"

// Cache is a JSON read-through cache over Redis. A nil *Cache or a Redis
// failure falls back to loading from the source.
type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client}
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("cache not configured")
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		zap.L().Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Remember returns the cached value for key, or calls load and caches its
// result for ttl.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}

	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == nil {
		var cached T
		if jerr := json.Unmarshal(raw, &cached); jerr == nil {
			return cached, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		zap.L().Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if payload, jerr := json.Marshal(value); jerr == nil {
		if serr := c.client.Set(ctx, keyPrefix+key, payload, ttl).Err(); serr != nil {
			zap.L().Warn("cache write failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return value, nil
}
