package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"geospy/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Service using Redis. Capacity bounding is delegated
// to entry TTLs and Redis' own maxmemory policy; hit/miss counters are
// tracked locally.
type RedisCache struct {
	client *redis.Client
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewRedisCache creates a new Redis-based cache
func NewRedisCache(redisURL string) (Service, error) {
	return newRedisCache(redisURL)
}

// newRedisCache creates the concrete implementation
func newRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Get retrieves a cached value for the given key
func (r *RedisCache) Get(ctx context.Context, key string) (interface{}, error) {
	if key == "" {
		return nil, models.ErrInvalidCacheKey
	}

	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			r.misses.Add(1)
			return nil, models.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	r.hits.Add(1)
	// Return the raw JSON string, let the domain layer handle unmarshaling
	return data, nil
}

// Set stores a value in Redis with the specified TTL
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return models.ErrInvalidCacheKey
	}
	if ttl <= 0 {
		return fmt.Errorf("TTL must be positive, got: %v", ttl)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Delete removes an entry from Redis
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return models.ErrInvalidCacheKey
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Clear empties the current Redis database
func (r *RedisCache) Clear(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("redis flush failed: %w", err)
	}
	return nil
}

// Stats reports locally tracked counters plus current key count
func (r *RedisCache) Stats() models.CacheStats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	size := 0
	if n, err := r.client.DBSize(ctx).Result(); err == nil {
		size = int(n)
	}

	hits := r.hits.Load()
	misses := r.misses.Load()
	total := hits + misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return models.CacheStats{
		Size:     size,
		Hits:     hits,
		Misses:   misses,
		HitRatio: ratio,
	}
}
