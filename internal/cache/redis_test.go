package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"geospy/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis creates a mini redis server for testing
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := &RedisCache{
		client: client,
	}

	return mr, cache
}

func TestRedisCache_NewRedisCache_Success(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	redisURL := "redis://" + mr.Addr()
	cache, err := NewRedisCache(redisURL)

	require.NoError(t, err)
	assert.NotNil(t, cache)
}

func TestRedisCache_NewRedisCache_InvalidURL(t *testing.T) {
	cache, err := NewRedisCache("invalid://url::")

	assert.Error(t, err)
	assert.Nil(t, cache)
	assert.Contains(t, err.Error(), "failed to parse redis URL")
}

func TestRedisCache_SetAndGet_Struct(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	result := &models.AnalysisResult{
		ImageID:     "img-1",
		Fingerprint: "abc123",
		Timestamp:   time.Now().UTC().Truncate(time.Second),
	}

	err := cache.Set(ctx, "fingerprint:abc123", result, 1*time.Hour)
	require.NoError(t, err)

	value, err := cache.Get(ctx, "fingerprint:abc123")
	require.NoError(t, err)

	// Redis stores JSON, so we get back the JSON string
	raw, ok := value.(string)
	require.True(t, ok)

	var decoded models.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "img-1", decoded.ImageID)
	assert.Equal(t, "abc123", decoded.Fingerprint)
}

func TestRedisCache_Get_Miss(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	value, err := cache.Get(context.Background(), "missing")
	assert.Nil(t, value)
	assert.ErrorIs(t, err, models.ErrCacheMiss)
}

func TestRedisCache_EmptyKeyRejected(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	_, err := cache.Get(ctx, "")
	assert.ErrorIs(t, err, models.ErrInvalidCacheKey)

	err = cache.Set(ctx, "", "value", 1*time.Hour)
	assert.ErrorIs(t, err, models.ErrInvalidCacheKey)
}

func TestRedisCache_Expiry(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", 1*time.Second))

	// miniredis needs explicit time advancement
	mr.FastForward(2 * time.Second)

	_, err := cache.Get(ctx, "key")
	assert.ErrorIs(t, err, models.ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", 1*time.Hour))
	require.NoError(t, cache.Delete(ctx, "key"))

	_, err := cache.Get(ctx, "key")
	assert.ErrorIs(t, err, models.ErrCacheMiss)
}

func TestRedisCache_Clear(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1, 1*time.Hour))
	require.NoError(t, cache.Set(ctx, "b", 2, 1*time.Hour))

	require.NoError(t, cache.Clear(ctx))

	_, err := cache.Get(ctx, "a")
	assert.ErrorIs(t, err, models.ErrCacheMiss)
	_, err = cache.Get(ctx, "b")
	assert.ErrorIs(t, err, models.ErrCacheMiss)
}

func TestRedisCache_Stats(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1, 1*time.Hour))
	_, _ = cache.Get(ctx, "a")
	_, _ = cache.Get(ctx, "missing")

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}
