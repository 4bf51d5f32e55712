package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"geospy/internal/models"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	modelName      = "gemini-2.5-pro"

	// Upper bound on a generateContent response body
	maxResponseBytes = 4 * 1024 * 1024
)

const analysisPrompt = `Analyze this aerial image and provide the following information as JSON:
{
    "description": "Detailed description of the physical environment",
    "location": {
        "country": "Most likely country",
        "city": "Most likely city",
        "neighborhood": "Neighborhood or specific area",
        "street": "Street or specific location",
        "coordinates": {
            "latitude": "Approximate latitude",
            "longitude": "Approximate longitude"
        }
    },
    "architectural_features": ["List of distinctive architectural features"],
    "landscape_features": ["List of landscape features"],
    "confidence": "Geolocation confidence level (high/medium/low)"
}

IMPORTANT:
- Focus ONLY on architectural and geographic elements
- Do NOT include analysis of people
- Provide approximate coordinates based on visible features
- State the geolocation confidence level`

// GeminiClient implements Service using the Gemini generateContent REST API
type GeminiClient struct {
	apiKey     string
	baseURL    string
	client     *http.Client
	minSpacing time.Duration
	lastCall   time.Time
	callMutex  sync.Mutex
}

// NewGeminiClient creates a new Gemini-backed vision client. An empty API key
// yields a client whose calls fail with ErrVisionUnavailable so dependent
// features degrade instead of crashing.
func NewGeminiClient(apiKey string, timeout, minSpacing time.Duration) Service {
	return newGeminiClient(apiKey, defaultBaseURL, timeout, minSpacing)
}

// newGeminiClient creates the concrete implementation
func newGeminiClient(apiKey, baseURL string, timeout, minSpacing time.Duration) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		minSpacing: minSpacing,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Available reports whether the client is configured with an API key
func (g *GeminiClient) Available() bool {
	return g.apiKey != ""
}

// AnalyzeImage sends an image with the geolocation prompt and parses the
// structured JSON the model returns
func (g *GeminiClient) AnalyzeImage(ctx context.Context, imagePath string) (*models.VisionAnalysis, error) {
	text, err := g.generate(ctx, imagePath, analysisPrompt)
	if err != nil {
		return nil, err
	}

	return parseAnalysisText(text), nil
}

// ChatAboutImage sends a free-form question about an image
func (g *GeminiClient) ChatAboutImage(ctx context.Context, imagePath, message string) (string, error) {
	prompt := fmt.Sprintf(`Analyze this image and answer the following question: %s

IMPORTANT:
- Focus ONLY on architectural and geographic elements
- Do NOT include analysis of people`, message)

	return g.generate(ctx, imagePath, prompt)
}

// generate performs one generateContent call and returns the model text
func (g *GeminiClient) generate(ctx context.Context, imagePath, prompt string) (string, error) {
	if !g.Available() {
		return "", models.ErrVisionUnavailable
	}

	g.pace()

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: mimeTypeFor(imagePath),
					Data:     base64.StdEncoding.EncodeToString(imageData),
				}},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, modelName, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: %v", models.ErrFetchTimeout, err)
		}
		return "", fmt.Errorf("vision API call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read vision API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision API returned HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode vision API response: %w", err)
	}

	text := parsed.firstText()
	if text == "" {
		return "", fmt.Errorf("vision API returned no candidates")
	}

	return text, nil
}

// pace enforces a minimum interval between outbound calls to stay inside
// API quota
func (g *GeminiClient) pace() {
	if g.minSpacing <= 0 {
		return
	}

	g.callMutex.Lock()
	defer g.callMutex.Unlock()

	if wait := g.minSpacing - time.Since(g.lastCall); wait > 0 {
		time.Sleep(wait)
	}
	g.lastCall = time.Now()
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Gemini generateContent wire types

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r *generateResponse) firstText() string {
	var sb strings.Builder
	if len(r.Candidates) == 0 {
		return ""
	}
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
