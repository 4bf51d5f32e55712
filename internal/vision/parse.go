package vision

import (
	"encoding/json"
	"strconv"
	"strings"

	"geospy/internal/models"
)

// rawAnalysis mirrors the JSON schema requested in the analysis prompt
type rawAnalysis struct {
	Description string `json:"description"`
	Location    struct {
		Country      string `json:"country"`
		City         string `json:"city"`
		Neighborhood string `json:"neighborhood"`
		Street       string `json:"street"`
		Coordinates  struct {
			Latitude  flexValue `json:"latitude"`
			Longitude flexValue `json:"longitude"`
		} `json:"coordinates"`
	} `json:"location"`
	ArchitecturalFeatures []string `json:"architectural_features"`
	LandscapeFeatures     []string `json:"landscape_features"`
	Confidence            string   `json:"confidence"`
}

// flexValue accepts either a JSON string or number
type flexValue string

func (f *flexValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	*f = flexValue(s)
	return nil
}

// parseAnalysisText extracts the JSON object from model output and converts
// it to a VisionAnalysis. Models wrap JSON in prose or markdown fences, so
// the object is located between the first '{' and the last '}'. Output with
// no JSON at all degrades to a low-confidence result carrying the raw text.
func parseAnalysisText(text string) *models.VisionAnalysis {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start == -1 || end == -1 || end <= start {
		return fallbackAnalysis(text)
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return fallbackAnalysis(text)
	}

	analysis := &models.VisionAnalysis{
		Description:           raw.Description,
		Confidence:            normalizeConfidence(raw.Confidence),
		Country:               orUnknown(raw.Location.Country),
		City:                  orUnknown(raw.Location.City),
		Neighborhood:          orUnknown(raw.Location.Neighborhood),
		Street:                orUnknown(raw.Location.Street),
		ArchitecturalFeatures: raw.ArchitecturalFeatures,
		LandscapeFeatures:     raw.LandscapeFeatures,
	}

	lat, latOK := parseCoordinate(string(raw.Location.Coordinates.Latitude), "S")
	lon, lonOK := parseCoordinate(string(raw.Location.Coordinates.Longitude), "W")
	if latOK && lonOK && (lat != 0 || lon != 0) {
		analysis.Coordinates = &models.Coordinates{
			Latitude:  lat,
			Longitude: lon,
		}
	}

	return analysis
}

// fallbackAnalysis wraps unparseable model output into a low-confidence result
func fallbackAnalysis(text string) *models.VisionAnalysis {
	return &models.VisionAnalysis{
		Description:           text,
		Confidence:            "low",
		Country:               "Unknown",
		City:                  "Unknown",
		Neighborhood:          "Unknown",
		Street:                "Unknown",
		ArchitecturalFeatures: []string{},
		LandscapeFeatures:     []string{},
	}
}

// parseCoordinate sanitizes a coordinate string the model produced. Degree
// symbols are stripped; a trailing hemisphere letter matching negativeRef
// negates the value, its counterpart is dropped.
func parseCoordinate(value, negativeRef string) (float64, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, false
	}

	s = strings.ReplaceAll(s, "°", "")
	s = strings.TrimSpace(s)

	negative := false
	for _, ref := range []string{"N", "S", "E", "W"} {
		if strings.HasSuffix(s, ref) {
			if ref == negativeRef {
				negative = true
			}
			s = strings.TrimSpace(strings.TrimSuffix(s, ref))
			break
		}
	}

	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	if negative && parsed > 0 {
		parsed = -parsed
	}
	return parsed, true
}

func normalizeConfidence(confidence string) string {
	switch strings.ToLower(strings.TrimSpace(confidence)) {
	case "high", "medium", "low":
		return strings.ToLower(strings.TrimSpace(confidence))
	default:
		return "low"
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
