package analysis

import (
	"context"
	"time"

	"geospy/internal/models"
)

// AnalysisService defines the interface for media analysis operations
type AnalysisService interface {
	AnalyzeImage(ctx context.Context, imageID string) (*models.AnalysisResult, error)
	ChatAboutImage(ctx context.Context, imageID, message string) (*models.ChatResponse, error)
	AnalyzeVideo(ctx context.Context, videoID string, interval time.Duration, maxFrames int) (*models.VideoAnalysis, error)
}
