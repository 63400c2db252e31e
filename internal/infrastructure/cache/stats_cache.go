package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	appfaculty "github.com/school/backend/internal/application/faculty"
	"github.com/school/backend/internal/domain/faculty"
)

const (
	defaultKeyPrefix = "school:"
	statsKey         = "teachers:stats"
	defaultStatsTTL  = 30 * time.Second
)

// RedisStatsCache stores teacher stats as a JSON value with a TTL
type RedisStatsCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisStatsCacheOption is a functional option for configuring the cache
type RedisStatsCacheOption func(*RedisStatsCache)

// WithKeyPrefix sets the prefix of every key
func WithKeyPrefix(prefix string) RedisStatsCacheOption {
	return func(c *RedisStatsCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithTTL sets how long stats stay cached
func WithTTL(ttl time.Duration) RedisStatsCacheOption {
	return func(c *RedisStatsCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewRedisStatsCache creates a Redis backed stats cache
func NewRedisStatsCache(client *redis.Client, opts ...RedisStatsCacheOption) *RedisStatsCache {
	c := &RedisStatsCache{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    defaultStatsTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisStatsCache) key() string {
	return c.prefix + statsKey
}

// Get reads the cached stats
func (c *RedisStatsCache) Get(ctx context.Context) (faculty.TeacherStats, bool, error) {
	data, err := c.client.Get(ctx, c.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return faculty.TeacherStats{}, false, nil
	}
	if err != nil {
		return faculty.TeacherStats{}, false, fmt.Errorf("redis get stats: %w", err)
	}

	var stats faculty.TeacherStats
	if err := json.Unmarshal(data, &stats); err != nil {
		// a corrupt value is treated as a miss and overwritten by the next Set
		return faculty.TeacherStats{}, false, nil
	}
	return stats, true, nil
}

// Set stores stats with the configured TTL
func (c *RedisStatsCache) Set(ctx context.Context, stats faculty.TeacherStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set stats: %w", err)
	}
	return nil
}

// Invalidate deletes the cached stats
func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key()).Err(); err != nil {
		return fmt.Errorf("redis delete stats: %w", err)
	}
	return nil
}

// InMemoryStatsCache keeps stats in process memory. Suitable for a single
// instance; other instances do not see invalidations.
type InMemoryStatsCache struct {
	mu        sync.RWMutex
	stats     faculty.TeacherStats
	expiresAt time.Time
	valid     bool
	ttl       time.Duration
	now       func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewInMemoryStatsCache creates an in-memory stats cache
func NewInMemoryStatsCache(ttl time.Duration) *InMemoryStatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &InMemoryStatsCache{ttl: ttl, now: time.Now}
}

// Get returns the stats unless they expired
func (c *InMemoryStatsCache) Get(_ context.Context) (faculty.TeacherStats, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid || !c.now().Before(c.expiresAt) {
		c.misses.Add(1)
		return faculty.TeacherStats{}, false, nil
	}
	c.hits.Add(1)
	return c.stats, true, nil
}

// Set stores stats
func (c *InMemoryStatsCache) Set(_ context.Context, stats faculty.TeacherStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats
	c.valid = true
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

// Invalidate drops the stored stats
func (c *InMemoryStatsCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	return nil
}

// HitRate returns hits and misses since creation
func (c *InMemoryStatsCache) HitRate() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

var (
	_ appfaculty.TeacherStatsCache = (*RedisStatsCache)(nil)
	_ appfaculty.TeacherStatsCache = (*InMemoryStatsCache)(nil)
)
