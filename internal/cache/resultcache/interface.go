package resultcache

import (
	"context"
	"time"

	"geospy/internal/models"
)

// Service defines the interface for analysis result cache operations,
// keyed by content fingerprint
type Service interface {
	Get(ctx context.Context, fingerprint string) (*models.AnalysisResult, error)
	Set(ctx context.Context, fingerprint string, result *models.AnalysisResult, ttl time.Duration) error
	Delete(ctx context.Context, fingerprint string) error
	Clear(ctx context.Context) error
	Stats() models.CacheStats
}
