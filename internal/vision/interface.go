package vision

import (
	"context"

	"geospy/internal/models"
)

// Service defines the interface for vision LLM analysis
// External packages should use this interface, not the concrete implementations
type Service interface {
	AnalyzeImage(ctx context.Context, imagePath string) (*models.VisionAnalysis, error)
	ChatAboutImage(ctx context.Context, imagePath, message string) (string, error)
	Available() bool
}
