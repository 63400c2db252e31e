package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	appfaculty "github.com/school/backend/internal/application/faculty"
	"github.com/school/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const redisPingTimeout = 5 * time.Second

// StatsCacheFactory creates teacher stats caches based on configuration
type StatsCacheFactory struct {
	redisConfig           config.RedisConfig
	cacheConfig           config.CacheConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StatsCacheFactoryOption is a functional option for configuring the factory
type StatsCacheFactoryOption func(*StatsCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StatsCacheFactoryOption {
	return func(f *StatsCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) StatsCacheFactoryOption {
	return func(f *StatsCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStatsCacheFactory creates a new factory
func NewStatsCacheFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...StatsCacheFactoryOption) *StatsCacheFactory {
	f := &StatsCacheFactory{
		redisConfig:           redisCfg,
		cacheConfig:           cacheCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CreateStore returns a Redis backed cache when Redis is enabled and reachable,
// the in-memory cache otherwise. The returned close function releases the
// Redis connection and is never nil.
func (f *StatsCacheFactory) CreateStore() (appfaculty.TeacherStatsCache, func() error, error) {
	noClose := func() error { return nil }

	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory teacher stats cache")
		return NewInMemoryStatsCache(f.cacheConfig.StatsTTL), noClose, nil
	}

	client, err := NewRedisClient(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis teacher stats cache", zap.String("addr", f.redisConfig.Addr()))
		store := NewRedisStatsCache(client,
			WithKeyPrefix(f.cacheConfig.KeyPrefix),
			WithTTL(f.cacheConfig.StatsTTL),
		)
		return store, client.Close, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for stats cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory teacher stats cache. "+
		"Instances will not share invalidations.",
		zap.Error(err),
	)
	return NewInMemoryStatsCache(f.cacheConfig.StatsTTL), noClose, nil
}
