package geo

import (
	"context"

	"geospy/internal/models"
)

// Service defines the interface for geolocation processing
// External packages should use this interface, not the concrete implementations
type Service interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (*models.GeoLocation, error)
	MergeLocationData(ctx context.Context, vision *models.VisionAnalysis, gps *models.GPSData) *models.MergedLocation
}
