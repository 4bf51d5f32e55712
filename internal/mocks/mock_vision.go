package mocks

import (
	"context"

	"geospy/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockVision is a mock implementation of vision.Service
type MockVision struct {
	mock.Mock
}

// AnalyzeImage mocks the AnalyzeImage method of vision.Service
func (m *MockVision) AnalyzeImage(ctx context.Context, imagePath string) (*models.VisionAnalysis, error) {
	args := m.Called(ctx, imagePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VisionAnalysis), args.Error(1)
}

// ChatAboutImage mocks the ChatAboutImage method of vision.Service
func (m *MockVision) ChatAboutImage(ctx context.Context, imagePath, message string) (string, error) {
	args := m.Called(ctx, imagePath, message)
	return args.String(0), args.Error(1)
}

// Available mocks the Available method of vision.Service
func (m *MockVision) Available() bool {
	args := m.Called()
	return args.Bool(0)
}
