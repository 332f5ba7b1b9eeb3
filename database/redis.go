package database

import (
	"context"
	"time"

	"repairmybike-api/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var Redis *redis.Client

// InitRedis connects the cache. Without REDIS_URL, or when Redis is down at
// startup, the service runs uncached.
func InitRedis() {
	if config.REDIS_URL == "" {
		zap.L().Warn("⚠️ REDIS_URL not set, caching disabled")
		return
	}

	opts, err := redis.ParseURL(config.REDIS_URL)
	if err != nil {
		zap.L().Warn("⚠️ Invalid REDIS_URL, caching disabled", zap.Error(err))
		return
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("⚠️ Redis unreachable, caching disabled", zap.Error(err))
		_ = client.Close()
		return
	}

	Redis = client
	zap.L().Info("✅ Connected to Redis")
}
