package mocks

import (
	"context"

	"geospy/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockDetectorService is a mock implementation of detect.Service
type MockDetectorService struct {
	mock.Mock
}

// DetectObjects mocks the DetectObjects method of detect.Service
func (m *MockDetectorService) DetectObjects(ctx context.Context, imageID, imagePath, model string, confidence float64) (*models.DetectionResult, error) {
	args := m.Called(ctx, imageID, imagePath, model, confidence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DetectionResult), args.Error(1)
}

// Available mocks the Available method of detect.Service
func (m *MockDetectorService) Available() bool {
	args := m.Called()
	return args.Bool(0)
}
