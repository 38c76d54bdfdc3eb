package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/s4yuba/x-card-generator/internal/models"
)

const redisKeyPrefix = "profile:"

// RedisCache shares the profile cache between server instances. Any
// redis error degrades to a miss; the cache is an optimization, not a
// dependency.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "profile_cache"),
	}
}

func (c *RedisCache) Get(ctx context.Context, canonicalURL string) (*models.Profile, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+canonicalURL).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed", "url", canonicalURL, "error", err)
		}
		return nil, false
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		c.logger.Warn("cache entry corrupt, dropping", "url", canonicalURL, "error", err)
		c.client.Del(ctx, redisKeyPrefix+canonicalURL)
		return nil, false
	}
	return &profile, true
}

func (c *RedisCache) Set(ctx context.Context, canonicalURL string, profile *models.Profile) {
	data, err := json.Marshal(profile)
	if err != nil {
		c.logger.Error("failed to marshal profile for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+canonicalURL, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "url", canonicalURL, "error", err)
	}
}
