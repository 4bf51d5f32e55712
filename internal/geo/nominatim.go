package geo

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

const maxResponseBytes = 1024 * 1024

// NominatimService implements Service using the Nominatim reverse geocoding
// API (no key required) for address resolution
type NominatimService struct {
	baseURL string
	client  *http.Client
}

// NewNominatimService creates a new geolocation service
func NewNominatimService(baseURL string, timeout time.Duration) Service {
	return newNominatimService(baseURL, timeout)
}

// newNominatimService creates the concrete implementation
func newNominatimService(baseURL string, timeout time.Duration) *NominatimService {
	return &NominatimService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// nominatimResponse mirrors the fields used from the Nominatim reverse API
type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Country       string `json:"country"`
		CountryCode   string `json:"country_code"`
		State         string `json:"state"`
		Region        string `json:"region"`
		County        string `json:"county"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		Suburb        string `json:"suburb"`
		District      string `json:"district"`
		Neighbourhood string `json:"neighbourhood"`
		Hamlet        string `json:"hamlet"`
		Road          string `json:"road"`
		Street        string `json:"street"`
		Postcode      string `json:"postcode"`
	} `json:"address"`
	Error string `json:"error"`
}

// ReverseGeocode resolves coordinates to a structured address
func (n *NominatimService) ReverseGeocode(ctx context.Context, latitude, longitude float64) (*models.GeoLocation, error) {
	if err := validateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", fmt.Sprintf("%f", latitude))
	query.Set("lon", fmt.Sprintf("%f", longitude))
	query.Set("accept-language", "en")

	reqURL := fmt.Sprintf("%s/reverse?%s", n.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Nominatim usage policy requires an identifying user agent
	req.Header.Set("User-Agent", "geospy/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", models.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("reverse geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", models.ErrGeocodeFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read geocoding response: %w", err)
	}

	var parsed nominatimResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: %s", models.ErrGeocodeFailed, parsed.Error)
	}

	return &models.GeoLocation{
		Coordinates: models.Coordinates{
			Latitude:  latitude,
			Longitude: longitude,
		},
		Address:     parsed.toAddress(),
		DisplayName: parsed.DisplayName,
	}, nil
}

// toAddress folds Nominatim's alternative field names into one address
func (r *nominatimResponse) toAddress() models.Address {
	a := r.Address
	return models.Address{
		Country:      firstNonEmpty(a.Country, "Unknown"),
		CountryCode:  strings.ToUpper(a.CountryCode),
		State:        firstNonEmpty(a.State, a.Region),
		County:       a.County,
		City:         firstNonEmpty(a.City, a.Town, a.Village),
		District:     firstNonEmpty(a.Suburb, a.District),
		Neighborhood: firstNonEmpty(a.Neighbourhood, a.Hamlet),
		Street:       firstNonEmpty(a.Road, a.Street),
		PostalCode:   a.Postcode,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func validateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return models.ErrInvalidCoordinates
	}
	return nil
}
