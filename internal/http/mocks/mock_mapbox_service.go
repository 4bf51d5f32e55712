package mocks

import (
	"context"

	"geospy/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockMapboxService is a mock implementation of mapbox.Service
type MockMapboxService struct {
	mock.Mock
}

// ForwardGeocode mocks the ForwardGeocode method of mapbox.Service
func (m *MockMapboxService) ForwardGeocode(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GeocodeResult), args.Error(1)
}

// ReverseGeocode mocks the ReverseGeocode method of mapbox.Service
func (m *MockMapboxService) ReverseGeocode(ctx context.Context, latitude, longitude float64) (*models.GeocodeResult, error) {
	args := m.Called(ctx, latitude, longitude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GeocodeResult), args.Error(1)
}

// StaticMapURL mocks the StaticMapURL method of mapbox.Service
func (m *MockMapboxService) StaticMapURL(latitude, longitude float64, zoom float64, width, height int) (string, error) {
	args := m.Called(latitude, longitude, zoom, width, height)
	return args.String(0), args.Error(1)
}

// SatelliteImage mocks the SatelliteImage method of mapbox.Service
func (m *MockMapboxService) SatelliteImage(ctx context.Context, latitude, longitude float64, zoom float64) ([]byte, error) {
	args := m.Called(ctx, latitude, longitude, zoom)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Available mocks the Available method of mapbox.Service
func (m *MockMapboxService) Available() bool {
	args := m.Called()
	return args.Bool(0)
}
