package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"geospy/internal/analysis"
	"geospy/internal/cache/resultcache"
	"geospy/internal/detect"
	"geospy/internal/geo"
	"geospy/internal/logger"
	"geospy/internal/mapbox"
	"geospy/internal/models"
	"geospy/internal/session"
	"geospy/internal/storage"
)

// imageExtensions and videoExtensions list the accepted upload types
var (
	imageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".tiff": true, ".bmp": true,
	}
	videoExtensions = map[string]bool{
		".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true,
	}
)

// Handler contains the HTTP handlers for the API
type Handler struct {
	analysisService analysis.AnalysisService
	storage         storage.Service
	sessions        *session.Store
	mapbox          mapbox.Service
	detector        detect.Service
	geo             geo.Service
	results         resultcache.Service
	logger          logger.Service

	maxUploadSize int64
	frameInterval time.Duration
	maxFrames     int
}

// NewHandler creates a new HTTP handler
func NewHandler(
	analysisService analysis.AnalysisService,
	storage storage.Service,
	sessions *session.Store,
	mapbox mapbox.Service,
	detector detect.Service,
	geo geo.Service,
	results resultcache.Service,
	logger logger.Service,
	maxUploadSize int64,
	frameInterval time.Duration,
	maxFrames int,
) *Handler {
	return &Handler{
		analysisService: analysisService,
		storage:         storage,
		sessions:        sessions,
		mapbox:          mapbox,
		detector:        detector,
		geo:             geo,
		results:         results,
		logger:          logger,
		maxUploadSize:   maxUploadSize,
		frameInterval:   frameInterval,
		maxFrames:       maxFrames,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Services  map[string]bool `json:"services"`
}

// UploadResponse represents a successful upload
type UploadResponse struct {
	ID       string               `json:"id"`
	Filename string               `json:"filename"`
	Kind     models.MediaKind     `json:"kind"`
	Status   models.SessionStatus `json:"status"`
}

// writeJSONResponse writes a JSON response with standard headers including X-Request-ID
func (h *Handler) writeJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) error {
	logEvent := logger.GetLogEvent(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", logEvent.ProcessID)
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, error, message string) {
	response := ErrorResponse{
		Error:     error,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, statusCode, response); err != nil {
		h.logger.LogError(r.Context(), "response_encoding", "", "Failed to encode error response", err, models.LogSeverityLow, nil)
	}
}

// HealthCheck handles GET /api/session/health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Services: map[string]bool{
			"mapbox":   h.mapbox.Available(),
			"detector": h.detector.Available(),
		},
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpHealthCheck, "", "Failed to encode health response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogInfo(ctx, logger.OpHealthCheck, "Health check performed successfully", nil)
}

// UploadImage handles POST /api/upload/image
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, models.MediaImage, imageExtensions, logger.OpImageUpload)
}

// UploadVideo handles POST /api/upload/video
func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, models.MediaVideo, videoExtensions, logger.OpVideoUpload)
}

// handleUpload saves a multipart upload and registers a session for it
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, kind models.MediaKind, allowed map[string]bool, operation string) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid upload", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowed[ext] {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "unsupported file type", fmt.Sprintf("extension %q is not accepted for %s uploads", ext, kind))
		return
	}

	id := uuid.New().String()
	path, err := h.storage.SaveUpload(id, header.Filename, file)
	if err != nil {
		h.logger.LogError(ctx, operation, id, "Failed to save upload", err, models.LogSeverityMedium, nil)
		statusCode := h.getStatusCodeForError(err)
		h.writeErrorResponse(w, r, statusCode, "upload failed", err.Error())
		return
	}

	sess := h.sessions.Create(id, kind, header.Filename, path)

	h.logger.LogSuccess(ctx, operation, id, "Upload saved", map[string]interface{}{
		"filename": header.Filename,
		"size":     header.Size,
		"kind":     string(kind),
	})

	h.writeJSONResponse(w, r, http.StatusOK, UploadResponse{
		ID:       id,
		Filename: header.Filename,
		Kind:     kind,
		Status:   sess.Status,
	})
}

// AnalyzeImage handles POST /api/analyze/image/{image_id}
func (h *Handler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	imageID := vars["image_id"]
	if imageID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "image_id is required", "")
		return
	}

	h.logger.LogInfo(ctx, logger.OpImageAnalysis, fmt.Sprintf("Starting analysis for image: %s", imageID), map[string]interface{}{
		"image_id": imageID,
	})

	result, err := h.analysisService.AnalyzeImage(ctx, imageID)
	if err != nil {
		h.logger.LogError(ctx, logger.OpImageAnalysis, imageID, "Image analysis failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "analysis failed", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, result); err != nil {
		h.logger.LogError(ctx, logger.OpImageAnalysis, imageID, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpImageAnalysis, imageID, "Successfully analyzed image", nil)
}

// chatRequest is the body of POST /api/chat/image/{image_id}
type chatRequest struct {
	Message string `json:"message"`
}

// ChatAboutImage handles POST /api/chat/image/{image_id}
func (h *Handler) ChatAboutImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	imageID := vars["image_id"]

	var request chatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(request.Message) == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "message cannot be empty", "")
		return
	}

	response, err := h.analysisService.ChatAboutImage(ctx, imageID, request.Message)
	if err != nil {
		h.logger.LogError(ctx, logger.OpImageChat, imageID, "Chat failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "chat failed", err.Error())
		return
	}

	h.writeJSONResponse(w, r, http.StatusOK, response)
}

// analyzeVideoRequest is the optional body of POST /api/analyze/video/{video_id}
type analyzeVideoRequest struct {
	IntervalSeconds int `json:"interval_seconds"`
	MaxFrames       int `json:"max_frames"`
}

// AnalyzeVideo handles POST /api/analyze/video/{video_id}
func (h *Handler) AnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	videoID := vars["video_id"]
	if videoID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "video_id is required", "")
		return
	}

	interval := h.frameInterval
	maxFrames := h.maxFrames

	// Body is optional; defaults apply when absent. A present but malformed
	// body is still a client error.
	var request analyzeVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if request.IntervalSeconds > 0 {
		interval = time.Duration(request.IntervalSeconds) * time.Second
	}
	if request.MaxFrames > 0 {
		maxFrames = request.MaxFrames
	}

	h.logger.LogInfo(ctx, logger.OpVideoAnalysis, fmt.Sprintf("Starting analysis for video: %s", videoID), map[string]interface{}{
		"video_id":   videoID,
		"interval_s": interval.Seconds(),
		"max_frames": maxFrames,
	})

	result, err := h.analysisService.AnalyzeVideo(ctx, videoID, interval, maxFrames)
	if err != nil {
		h.logger.LogError(ctx, logger.OpVideoAnalysis, videoID, "Video analysis failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "analysis failed", err.Error())
		return
	}

	statusCode := http.StatusOK
	if result.Summary.Succeeded > 0 && result.Summary.Failed > 0 {
		statusCode = http.StatusMultiStatus
	}

	h.writeJSONResponse(w, r, statusCode, result)
}

// detectRequest is the body of POST /api/detect/objects
type detectRequest struct {
	ImageID    string  `json:"image_id"`
	Model      string  `json:"model"`
	Confidence float64 `json:"confidence"`
}

// DetectObjects handles POST /api/detect/objects
func (h *Handler) DetectObjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request detectRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if request.ImageID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "image_id is required", "")
		return
	}
	if request.Confidence == 0 {
		request.Confidence = 0.25
	}

	sess, err := h.sessions.Get(request.ImageID)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "session not found", err.Error())
		return
	}

	result, err := h.detector.DetectObjects(ctx, request.ImageID, sess.FilePath, request.Model, request.Confidence)
	if err != nil {
		h.logger.LogError(ctx, logger.OpObjectDetection, request.ImageID, "Object detection failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "detection failed", err.Error())
		return
	}

	h.logger.LogSuccess(ctx, logger.OpObjectDetection, request.ImageID, "Object detection completed", map[string]interface{}{
		"total_objects": result.Summary.TotalObjects,
		"model":         result.Model,
	})

	h.writeJSONResponse(w, r, http.StatusOK, result)
}

// SessionStatus handles GET /api/session/{session_id}
func (h *Handler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["session_id"]

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "session not found", err.Error())
		return
	}

	h.writeJSONResponse(w, r, http.StatusOK, sess)
}

// geocodeForwardRequest is the body of POST /api/geocode/forward
type geocodeForwardRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// GeocodeForward handles POST /api/geocode/forward
func (h *Handler) GeocodeForward(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request geocodeForwardRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if request.Limit == 0 {
		request.Limit = 5
	}

	results, err := h.mapbox.ForwardGeocode(ctx, request.Query, request.Limit)
	if err != nil {
		h.logger.LogError(ctx, logger.OpGeocode, request.Query, "Forward geocoding failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "geocoding failed", err.Error())
		return
	}

	h.writeJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"query":   request.Query,
		"results": results,
	})
}

// coordinatesRequest is the body of the coordinate-based map endpoints
type coordinatesRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// GeocodeReverse handles POST /api/geocode/reverse
func (h *Handler) GeocodeReverse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request coordinatesRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	location, err := h.geo.ReverseGeocode(ctx, request.Latitude, request.Longitude)
	if err != nil {
		h.logger.LogError(ctx, logger.OpGeocode, "", "Reverse geocoding failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "geocoding failed", err.Error())
		return
	}

	h.writeJSONResponse(w, r, http.StatusOK, location)
}

// StaticMap handles POST /api/static-map
func (h *Handler) StaticMap(w http.ResponseWriter, r *http.Request) {
	var request coordinatesRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	mapURL, err := h.mapbox.StaticMapURL(request.Latitude, request.Longitude, request.Zoom, request.Width, request.Height)
	if err != nil {
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "static map unavailable", err.Error())
		return
	}

	h.writeJSONResponse(w, r, http.StatusOK, map[string]string{"url": mapURL})
}

// SatelliteImage handles POST /api/location/satellite
func (h *Handler) SatelliteImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request coordinatesRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	image, err := h.mapbox.SatelliteImage(ctx, request.Latitude, request.Longitude, request.Zoom)
	if err != nil {
		h.logger.LogError(ctx, logger.OpGeocode, "", "Satellite image fetch failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "satellite image unavailable", err.Error())
		return
	}

	logEvent := logger.GetLogEvent(ctx)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Request-ID", logEvent.ProcessID)
	w.WriteHeader(http.StatusOK)
	w.Write(image)
}

// CacheStats handles GET /api/cache/stats
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, r, http.StatusOK, h.results.Stats())
}

// CacheClear handles POST /api/cache/clear
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.results.Clear(ctx); err != nil {
		h.logger.LogError(ctx, "cache_clear", "", "Failed to clear cache", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "cache clear failed", err.Error())
		return
	}

	h.logger.LogSuccess(ctx, "cache_clear", "", "Cache cleared", nil)
	h.writeJSONResponse(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

// getStatusCodeForError maps sentinel errors to HTTP status codes
func (h *Handler) getStatusCodeForError(err error) int {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrVisionUnavailable),
		errors.Is(err, models.ErrMapboxUnavailable),
		errors.Is(err, models.ErrDetectorUnavailable),
		errors.Is(err, models.ErrFFmpegUnavailable),
		errors.Is(err, models.ErrCacheUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, models.ErrInvalidCoordinates),
		errors.Is(err, models.ErrInvalidCacheKey),
		errors.Is(err, models.ErrEmptyUpload),
		errors.Is(err, models.ErrGeocodeFailed),
		errors.Is(err, models.ErrInvalidDetectionParams),
		errors.Is(err, models.ErrWrongMediaKind),
		errors.Is(err, models.ErrNoGPSData):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrFetchTimeout):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
