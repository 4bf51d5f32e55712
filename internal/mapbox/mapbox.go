package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"geospy/internal/models"
)

const (
	defaultBaseURL = "https://api.mapbox.com"

	// Upper bound on a static tile response body
	maxImageBytes = 8 * 1024 * 1024
)

// Service defines the interface for Mapbox geocoding and imagery
// External packages should use this interface, not the concrete implementations
type Service interface {
	ForwardGeocode(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error)
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (*models.GeocodeResult, error)
	StaticMapURL(latitude, longitude float64, zoom float64, width, height int) (string, error)
	SatelliteImage(ctx context.Context, latitude, longitude float64, zoom float64) ([]byte, error)
	Available() bool
}

// Client implements Service against the Mapbox HTTP APIs
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a new Mapbox client. An empty API key yields a client
// whose calls fail with ErrMapboxUnavailable so map features degrade instead
// of crashing.
func NewClient(apiKey string, timeout time.Duration) Service {
	return newClient(apiKey, defaultBaseURL, timeout)
}

// newClient creates the concrete implementation
func newClient(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Available reports whether the client is configured with an API key
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// geocodingResponse mirrors the Mapbox geocoding API feature collection
type geocodingResponse struct {
	Features []struct {
		Text      string    `json:"text"`
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"`
		PlaceType []string  `json:"place_type"`
		Relevance float64   `json:"relevance"`
	} `json:"features"`
}

// ForwardGeocode resolves a place name or address to coordinate candidates
func (c *Client) ForwardGeocode(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	if !c.Available() {
		return nil, models.ErrMapboxUnavailable
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", models.ErrGeocodeFailed)
	}

	// Mapbox accepts between 1 and 10 results
	if limit < 1 {
		limit = 1
	}
	if limit > 10 {
		limit = 10
	}

	reqURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?access_token=%s&limit=%d",
		c.baseURL, url.PathEscape(query), c.apiKey, limit)

	parsed, err := c.fetchGeocoding(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	results := make([]models.GeocodeResult, 0, len(parsed.Features))
	for _, feature := range parsed.Features {
		if len(feature.Center) < 2 {
			continue
		}
		results = append(results, models.GeocodeResult{
			Name:      feature.Text,
			PlaceName: feature.PlaceName,
			Longitude: feature.Center[0],
			Latitude:  feature.Center[1],
			PlaceType: feature.PlaceType,
			Relevance: feature.Relevance,
		})
	}

	return results, nil
}

// ReverseGeocode resolves coordinates to the best matching place
func (c *Client) ReverseGeocode(ctx context.Context, latitude, longitude float64) (*models.GeocodeResult, error) {
	if !c.Available() {
		return nil, models.ErrMapboxUnavailable
	}

	reqURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%f,%f.json?access_token=%s&limit=1",
		c.baseURL, longitude, latitude, c.apiKey)

	parsed, err := c.fetchGeocoding(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	if len(parsed.Features) == 0 {
		return nil, fmt.Errorf("%w: no results for %f,%f", models.ErrGeocodeFailed, latitude, longitude)
	}

	feature := parsed.Features[0]
	result := &models.GeocodeResult{
		Name:      feature.Text,
		PlaceName: feature.PlaceName,
		PlaceType: feature.PlaceType,
		Relevance: feature.Relevance,
	}
	if len(feature.Center) >= 2 {
		result.Longitude = feature.Center[0]
		result.Latitude = feature.Center[1]
	}

	return result, nil
}

// StaticMapURL builds a static map image URL with a marker at the given point
func (c *Client) StaticMapURL(latitude, longitude float64, zoom float64, width, height int) (string, error) {
	if !c.Available() {
		return "", models.ErrMapboxUnavailable
	}

	if width <= 0 {
		width = 600
	}
	if height <= 0 {
		height = 400
	}
	if zoom <= 0 {
		zoom = 15
	}

	return fmt.Sprintf("%s/styles/v1/mapbox/satellite-streets-v12/static/pin-l+ff0000(%f,%f)/%f,%f,%.1f/%dx%d?access_token=%s",
		c.baseURL, longitude, latitude, longitude, latitude, zoom, width, height, c.apiKey), nil
}

// SatelliteImage fetches satellite imagery centered on the given point
func (c *Client) SatelliteImage(ctx context.Context, latitude, longitude float64, zoom float64) ([]byte, error) {
	if !c.Available() {
		return nil, models.ErrMapboxUnavailable
	}
	if zoom <= 0 {
		zoom = 16
	}

	reqURL := fmt.Sprintf("%s/styles/v1/mapbox/satellite-v9/static/%f,%f,%.1f/600x400?access_token=%s",
		c.baseURL, longitude, latitude, zoom, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("satellite image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("satellite image request returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read satellite image: %w", err)
	}

	return data, nil
}

// fetchGeocoding performs one geocoding API call
func (c *Client) fetchGeocoding(ctx context.Context, reqURL string) (*geocodingResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", models.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", models.ErrGeocodeFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read geocoding response: %w", err)
	}

	var parsed geocodingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	return &parsed, nil
}
