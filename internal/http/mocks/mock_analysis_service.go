package mocks

import (
	"context"
	"time"

	"geospy/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockAnalysisService is a mock implementation of analysis.AnalysisService
type MockAnalysisService struct {
	mock.Mock
}

// AnalyzeImage mocks the AnalyzeImage method of analysis.AnalysisService
func (m *MockAnalysisService) AnalyzeImage(ctx context.Context, imageID string) (*models.AnalysisResult, error) {
	args := m.Called(ctx, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

// ChatAboutImage mocks the ChatAboutImage method of analysis.AnalysisService
func (m *MockAnalysisService) ChatAboutImage(ctx context.Context, imageID, message string) (*models.ChatResponse, error) {
	args := m.Called(ctx, imageID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatResponse), args.Error(1)
}

// AnalyzeVideo mocks the AnalyzeVideo method of analysis.AnalysisService
func (m *MockAnalysisService) AnalyzeVideo(ctx context.Context, videoID string, interval time.Duration, maxFrames int) (*models.VideoAnalysis, error) {
	args := m.Called(ctx, videoID, interval, maxFrames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VideoAnalysis), args.Error(1)
}
