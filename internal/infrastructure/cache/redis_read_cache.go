package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultReadCachePrefix = "storefront:cache:"

// RedisReadCache keeps read snapshots in Redis so every instance sees the
// same invalidation
type RedisReadCache struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

// NewRedisReadCache creates a cache over a shared client
func NewRedisReadCache(client redis.UniversalClient, logger *zap.Logger) *RedisReadCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisReadCache{client: client, prefix: defaultReadCachePrefix, logger: logger}
}

func (c *RedisReadCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss", zap.String("key", key))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Dropping corrupted cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, c.prefix+key)
		return false, nil
	}
	return true, nil
}

func (c *RedisReadCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

func (c *RedisReadCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

var _ ReadCache = (*RedisReadCache)(nil)
