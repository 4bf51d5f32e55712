package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"geospy/internal/models"
)

const maxResponseBytes = 16 * 1024 * 1024

// validModels lists the accepted detector model sizes
var validModels = map[string]bool{
	"nano":   true,
	"small":  true,
	"medium": true,
	"large":  true,
	"xlarge": true,
}

// Service defines the interface for external object detection
type Service interface {
	DetectObjects(ctx context.Context, imageID, imagePath, model string, confidence float64) (*models.DetectionResult, error)
	Available() bool
}

// Client implements Service against a remote YOLO inference endpoint
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a new detector client. An empty endpoint yields a client
// whose calls fail with ErrDetectorUnavailable.
func NewClient(endpoint string, timeout time.Duration) Service {
	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Available reports whether a detector endpoint is configured
func (c *Client) Available() bool {
	return c.endpoint != ""
}

// detectionResponse mirrors the detector API payload
type detectionResponse struct {
	Detections []struct {
		Class      string  `json:"class"`
		Confidence float64 `json:"confidence"`
		BBox       [4]int  `json:"bbox"`
	} `json:"detections"`
	AnnotatedImagePath string `json:"annotated_image_path"`
}

// DetectObjects sends an image to the detector and returns classified
// detections with aggregate statistics
func (c *Client) DetectObjects(ctx context.Context, imageID, imagePath, model string, confidence float64) (*models.DetectionResult, error) {
	if !c.Available() {
		return nil, models.ErrDetectorUnavailable
	}

	if model == "" {
		model = "nano"
	}
	if !validModels[model] {
		return nil, fmt.Errorf("%w: unknown model %q", models.ErrInvalidDetectionParams, model)
	}
	if confidence < 0.1 || confidence > 1.0 {
		return nil, fmt.Errorf("%w: confidence threshold %.2f outside [0.1, 1.0]", models.ErrInvalidDetectionParams, confidence)
	}

	body, contentType, err := buildDetectionRequest(imagePath, model, confidence)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", models.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrDetectorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector returned HTTP %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read detector response: %w", err)
	}

	var parsed detectionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode detector response: %w", err)
	}

	detections := make([]models.Detection, 0, len(parsed.Detections))
	for _, d := range parsed.Detections {
		detections = append(detections, models.Detection{
			Class:      d.Class,
			Confidence: d.Confidence,
			BBox:       d.BBox,
		})
	}

	return &models.DetectionResult{
		ImageID:             imageID,
		Model:               model,
		ConfidenceThreshold: confidence,
		Detections:          detections,
		Summary:             summarize(detections),
		AnnotatedImagePath:  parsed.AnnotatedImagePath,
		Timestamp:           time.Now().UTC(),
	}, nil
}

// buildDetectionRequest assembles the multipart form with the image file
// and detection parameters
func buildDetectionRequest(imagePath, model string, confidence float64) (io.Reader, string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}

	writer.WriteField("model", model)
	writer.WriteField("confidence", fmt.Sprintf("%.2f", confidence))

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

// summarize computes aggregate statistics over a detection list
func summarize(detections []models.Detection) models.DetectionSummary {
	summary := models.DetectionSummary{
		TotalObjects: len(detections),
		ObjectCounts: make(map[string]int),
	}

	for _, d := range detections {
		summary.ObjectCounts[d.Class]++
		if d.Class == "person" {
			summary.HasPeople = true
		}
	}

	best := 0
	for class, count := range summary.ObjectCounts {
		if count > best {
			best = count
			summary.MostCommonObject = class
		}
	}

	return summary
}
