package models

import (
	"errors"
	"fmt"
)

var (
	// ErrCacheMiss indicates that no valid entry exists for the requested key
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidCacheKey indicates that an empty or malformed cache key was provided
	ErrInvalidCacheKey = errors.New("invalid cache key")

	// ErrCacheUnavailable indicates that the cache backend cannot be reached
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrSessionNotFound indicates that no upload session exists for the given id
	ErrSessionNotFound = errors.New("session not found")

	// ErrVisionUnavailable indicates that the vision LLM is not configured
	ErrVisionUnavailable = errors.New("vision LLM unavailable: missing API key")

	// ErrMapboxUnavailable indicates that the Mapbox client is not configured
	ErrMapboxUnavailable = errors.New("mapbox unavailable: missing API key")

	// ErrDetectorUnavailable indicates that no object detection endpoint is configured
	ErrDetectorUnavailable = errors.New("object detector unavailable: no endpoint configured")

	// ErrFFmpegUnavailable indicates that the ffmpeg binary could not be found
	ErrFFmpegUnavailable = errors.New("ffmpeg not found in PATH")

	// ErrRateLimitExceeded indicates that rate limit has been exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidCoordinates indicates latitude/longitude outside valid ranges
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrNoGPSData indicates that an image carries no GPS EXIF tags
	ErrNoGPSData = errors.New("no GPS data in image metadata")

	// ErrGeocodeFailed indicates that the geocoding provider returned no usable result
	ErrGeocodeFailed = errors.New("geocoding failed")

	// ErrFetchTimeout indicates that an outbound API call timed out
	ErrFetchTimeout = errors.New("timeout while calling external API")

	// ErrEmptyUpload indicates that the uploaded file was empty
	ErrEmptyUpload = errors.New("uploaded file is empty")

	// ErrInvalidDetectionParams indicates an unknown model size or a confidence
	// threshold outside the accepted range
	ErrInvalidDetectionParams = errors.New("invalid detection parameters")

	// ErrWrongMediaKind indicates an operation applied to a session of the
	// wrong media kind, such as video analysis of an image upload
	ErrWrongMediaKind = errors.New("operation does not match upload media kind")
)

// AnalysisError represents an error specific to an analysis operation
type AnalysisError struct {
	ImageID string
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image %s: %s: %v", e.ImageID, e.Message, e.Err)
	}
	return fmt.Sprintf("image %s: %s", e.ImageID, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError creates a new analysis-specific error
func NewAnalysisError(imageID, message string, err error) *AnalysisError {
	return &AnalysisError{
		ImageID: imageID,
		Message: message,
		Err:     err,
	}
}
