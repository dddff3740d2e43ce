package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/etnz/assets"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisKey is the key under which RedisCache stores the rate table.
const DefaultRedisKey = "atr:rates:latest"

// RedisCache is an assets.RateProvider caching the tables of another provider
// in redis. Redis errors are logged and never fail a Fetch.
type RedisCache struct {
	client redis.UniversalClient
	next   assets.RateProvider
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache caches next's tables in client for ttl.
func NewRedisCache(client redis.UniversalClient, next assets.RateProvider, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, next: next, key: DefaultRedisKey, ttl: ttl, logger: logger}
}

// Fetch returns the cached table if any, or fetches and caches a new one.
func (c *RedisCache) Fetch(ctx context.Context) (assets.RateTable, error) {
	if reloading(ctx) {
		return c.fetch(ctx)
	}
	data, err := c.client.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var t assets.RateTable
		derr := json.Unmarshal(data, &t)
		if derr == nil {
			c.logger.Debug("exchange rates from redis", zap.String("key", c.key))
			return t.WithSource(assets.SourceCache), nil
		}
		c.logger.Warn("ignoring invalid cached rates", zap.String("key", c.key), zap.Error(derr))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("redis read error (ignored)", zap.Error(err))
	}

	return c.fetch(ctx)
}

// fetch gets a table from the wrapped provider and caches it.
func (c *RedisCache) fetch(ctx context.Context) (assets.RateTable, error) {
	t, err := c.next.Fetch(ctx)
	if err != nil {
		return assets.RateTable{}, err
	}
	data, err := json.Marshal(t)
	if err == nil {
		err = c.client.Set(ctx, c.key, data, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("redis write error (ignored)", zap.Error(err))
	}
	return t, nil
}

// Invalidate drops the cached table.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
