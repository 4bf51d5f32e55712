package geo

import (
	"context"
	"math"

	"geospy/internal/models"
)

// Coordinate source labels recorded on merged results
const (
	SourceLLM       = "LLM"
	SourceMetadata  = "Metadata"
	SourceGeocoding = "Reverse Geocoding"
)

// earthRadiusMeters is the mean Earth radius used for haversine distances
const earthRadiusMeters = 6371000

// MergeLocationData reconciles LLM-derived location data with EXIF GPS
// coordinates. LLM coordinates are preferred; EXIF GPS fills in when the
// model produced none. When both sources exist the disagreement between them
// is recorded. A merged result with coordinates but no address is enriched
// by reverse geocoding.
func (n *NominatimService) MergeLocationData(ctx context.Context, vision *models.VisionAnalysis, gps *models.GPSData) *models.MergedLocation {
	merged := &models.MergedLocation{}

	if vision != nil {
		if vision.Coordinates != nil {
			coords := *vision.Coordinates
			merged.Coordinates = &coords
			merged.CoordinatesSource = SourceLLM
		}
		if addr := visionAddress(vision); addr != nil {
			merged.Address = addr
			merged.AddressSource = SourceLLM
		}
	}

	if gps != nil {
		if merged.Coordinates == nil {
			merged.Coordinates = &models.Coordinates{
				Latitude:  gps.Latitude,
				Longitude: gps.Longitude,
			}
			merged.CoordinatesSource = SourceMetadata
		} else {
			merged.Delta = &models.CoordinateDelta{
				LatitudeDiff:  math.Abs(gps.Latitude - merged.Coordinates.Latitude),
				LongitudeDiff: math.Abs(gps.Longitude - merged.Coordinates.Longitude),
				DistanceMeters: Haversine(
					merged.Coordinates.Latitude, merged.Coordinates.Longitude,
					gps.Latitude, gps.Longitude,
				),
			}
		}
	}

	if merged.Coordinates != nil && merged.Address == nil {
		if location, err := n.ReverseGeocode(ctx, merged.Coordinates.Latitude, merged.Coordinates.Longitude); err == nil {
			addr := location.Address
			merged.Address = &addr
			merged.AddressSource = SourceGeocoding
		}
	}

	return merged
}

// visionAddress builds an address from LLM fields, nil when the model
// produced nothing usable
func visionAddress(vision *models.VisionAnalysis) *models.Address {
	if isUnknown(vision.Country) && isUnknown(vision.City) {
		return nil
	}

	return &models.Address{
		Country:      vision.Country,
		City:         vision.City,
		Neighborhood: vision.Neighborhood,
		Street:       vision.Street,
	}
}

func isUnknown(s string) bool {
	return s == "" || s == "Unknown"
}

// Haversine returns the great-circle distance between two points in meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
