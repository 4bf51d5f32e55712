package resultcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"geospy/internal/cache"
	"geospy/internal/models"
)

// resultCache implements Service using a generic cache
type resultCache struct {
	cache cache.Service
	ttl   time.Duration
}

// New creates a new analysis result cache
func New(cache cache.Service, ttl time.Duration) Service {
	return &resultCache{
		cache: cache,
		ttl:   ttl,
	}
}

// Get retrieves an analysis result from the cache
func (r *resultCache) Get(ctx context.Context, fingerprint string) (*models.AnalysisResult, error) {
	if fingerprint == "" {
		return nil, models.ErrInvalidCacheKey
	}

	value, err := r.cache.Get(ctx, cacheKey(fingerprint))
	if err != nil {
		return nil, err
	}

	// Handle type conversion
	switch v := value.(type) {
	case *models.AnalysisResult:
		// Memory cache returns the actual object
		return v, nil
	case models.AnalysisResult:
		return &v, nil
	case string:
		// Redis cache returns JSON string, unmarshal it
		var result models.AnalysisResult
		if err := json.Unmarshal([]byte(v), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached analysis result: %w", err)
		}
		return &result, nil
	default:
		return nil, fmt.Errorf("unexpected type in cache: %T", v)
	}
}

// Set stores an analysis result in the cache
func (r *resultCache) Set(ctx context.Context, fingerprint string, result *models.AnalysisResult, ttl time.Duration) error {
	if fingerprint == "" {
		return models.ErrInvalidCacheKey
	}

	// Use provided TTL or the cache default
	cacheTTL := ttl
	if cacheTTL == 0 {
		cacheTTL = r.ttl
	}

	return r.cache.Set(ctx, cacheKey(fingerprint), result, cacheTTL)
}

// Delete removes an analysis result from the cache
func (r *resultCache) Delete(ctx context.Context, fingerprint string) error {
	if fingerprint == "" {
		return models.ErrInvalidCacheKey
	}
	return r.cache.Delete(ctx, cacheKey(fingerprint))
}

// Clear empties the underlying cache
func (r *resultCache) Clear(ctx context.Context) error {
	return r.cache.Clear(ctx)
}

// Stats reports the underlying cache statistics
func (r *resultCache) Stats() models.CacheStats {
	return r.cache.Stats()
}

func cacheKey(fingerprint string) string {
	return fmt.Sprintf("fingerprint:%s", fingerprint)
}
