package cache

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/infrastructure/config"
)

// Factory picks Redis-backed or in-memory implementations depending on
// whether a Redis client is available
type Factory struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithRedisClient makes the factory use client
func WithRedisClient(client redis.UniversalClient) FactoryOption {
	return func(f *Factory) {
		f.client = client
	}
}

// NewFactory connects to Redis when cfg enables it. A connection failure
// falls back to in-memory stores with a warning.
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	if f.client != nil || !cfg.Enabled {
		return f
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Rate limits and capture claims will not be shared between instances.",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return f
	}
	f.client = client
	return f
}

// Client returns the Redis client, or nil when running in memory
func (f *Factory) Client() redis.UniversalClient {
	return f.client
}

// IdempotencyStore returns the capture claim store
func (f *Factory) IdempotencyStore() shared.IdempotencyStore {
	if f.client != nil {
		f.logger.Info("using Redis idempotency store")
		return NewRedisIdempotencyStore(f.client, "")
	}
	return NewInMemoryIdempotencyStore()
}

// ReadCache returns the cache for fetch-once reads
func (f *Factory) ReadCache() ReadCache {
	if f.client != nil {
		return NewRedisReadCache(f.client, f.logger.Named("cache"))
	}
	return NewInMemoryReadCache()
}

// Close closes the Redis client if the factory has one
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
