package mocks

import (
	"geospy/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockMetadata is a mock implementation of metadata.Service
type MockMetadata struct {
	mock.Mock
}

// Extract mocks the Extract method of metadata.Service
func (m *MockMetadata) Extract(path string) (*models.ImageMetadata, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImageMetadata), args.Error(1)
}
