package mocks

import (
	"context"

	"geospy/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockGeo is a mock implementation of geo.Service
type MockGeo struct {
	mock.Mock
}

// ReverseGeocode mocks the ReverseGeocode method of geo.Service
func (m *MockGeo) ReverseGeocode(ctx context.Context, latitude, longitude float64) (*models.GeoLocation, error) {
	args := m.Called(ctx, latitude, longitude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GeoLocation), args.Error(1)
}

// MergeLocationData mocks the MergeLocationData method of geo.Service
func (m *MockGeo) MergeLocationData(ctx context.Context, vision *models.VisionAnalysis, gps *models.GPSData) *models.MergedLocation {
	args := m.Called(ctx, vision, gps)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.MergedLocation)
}
