package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStatsCache(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	c := NewRedisStatsCache(client, WithKeyPrefix("test:"), WithTTL(time.Minute))

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := faculty.NewTeacherStats(3, 2)
	require.NoError(t, c.Set(ctx, want))
	assert.True(t, mr.Exists("test:teachers:stats"))
	assert.Equal(t, time.Minute, mr.TTL("test:teachers:stats"))

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, want))
	require.NoError(t, c.Invalidate(ctx))
	assert.False(t, mr.Exists("test:teachers:stats"))
}

func TestRedisStatsCache_CorruptValueIsAMiss(t *testing.T) {
	mr, client := newMiniredis(t)
	c := NewRedisStatsCache(client)
	require.NoError(t, mr.Set("school:teachers:stats", "not json"))

	_, ok, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStatsCache_ServerDown(t *testing.T) {
	mr, client := newMiniredis(t)
	c := NewRedisStatsCache(client)
	mr.Close()

	_, _, err := c.Get(context.Background())
	assert.Error(t, err)
}

func TestInMemoryStatsCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewInMemoryStatsCache(10 * time.Second)
	c.now = func() time.Time { return now }

	_, ok, _ := c.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, faculty.NewTeacherStats(1, 1)))
	got, ok, _ := c.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(2), got.Total)

	now = now.Add(11 * time.Second)
	_, ok, _ = c.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, faculty.NewTeacherStats(1, 0)))
	require.NoError(t, c.Invalidate(ctx))
	_, ok, _ = c.Get(ctx)
	assert.False(t, ok)

	hits, misses := c.HitRate()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(3), misses)
}

func TestStatsCacheFactory(t *testing.T) {
	t.Run("redis disabled", func(t *testing.T) {
		f := NewStatsCacheFactory(config.RedisConfig{}, config.CacheConfig{StatsTTL: time.Second})
		store, closeFn, err := f.CreateStore()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryStatsCache{}, store)
		assert.NoError(t, closeFn())
	})

	t.Run("redis reachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		f := NewStatsCacheFactory(redisConfigFor(t, mr), config.CacheConfig{KeyPrefix: "x:"}, WithLogger(zap.NewNop()))
		store, closeFn, err := f.CreateStore()
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &RedisStatsCache{}, store)
	})

	t.Run("unreachable with and without fallback", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := redisConfigFor(t, mr)
		mr.Close()

		store, _, err := NewStatsCacheFactory(cfg, config.CacheConfig{}).CreateStore()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryStatsCache{}, store)

		_, _, err = NewStatsCacheFactory(cfg, config.CacheConfig{}, WithInMemoryFallback(false)).CreateStore()
		assert.ErrorContains(t, err, "redis required")
	})
}

func redisConfigFor(t *testing.T, mr *miniredis.Miniredis) config.RedisConfig {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port}
}
