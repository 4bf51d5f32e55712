package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpmocks "geospy/internal/http/mocks"
	"geospy/internal/mocks"
	"geospy/internal/models"
	"geospy/internal/session"
)

type handlerFixture struct {
	analysis *httpmocks.MockAnalysisService
	storage  *mocks.MockStorage
	sessions *session.Store
	mapbox   *httpmocks.MockMapboxService
	detector *httpmocks.MockDetectorService
	geo      *mocks.MockGeo
	results  *mocks.MockResultCache
	handler  *Handler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		analysis: &httpmocks.MockAnalysisService{},
		storage:  &mocks.MockStorage{},
		sessions: session.NewStore(),
		mapbox:   &httpmocks.MockMapboxService{},
		detector: &httpmocks.MockDetectorService{},
		geo:      &mocks.MockGeo{},
		results:  &mocks.MockResultCache{},
	}
	f.handler = NewHandler(
		f.analysis, f.storage, f.sessions, f.mapbox, f.detector, f.geo, f.results,
		mocks.RelaxedLogger(), 50*1024*1024, time.Second, 10,
	)
	return f
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	f := newHandlerFixture(t)
	f.mapbox.On("Available").Return(true)
	f.detector.On("Available").Return(false)

	req := httptest.NewRequest(http.MethodGet, "/api/session/health", nil)
	rec := httptest.NewRecorder()

	f.handler.HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "healthy", response.Status)
	assert.True(t, response.Services["mapbox"])
	assert.False(t, response.Services["detector"])
}

func TestUploadImage(t *testing.T) {
	f := newHandlerFixture(t)
	f.storage.On("SaveUpload", mock.AnythingOfType("string"), "photo.jpg", mock.Anything).
		Return("/data/uploads/some-id.jpg", nil)

	body, contentType := multipartBody(t, "file", "photo.jpg", []byte{0xFF, 0xD8})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	f.handler.UploadImage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.NotEmpty(t, response.ID)
	assert.Equal(t, "photo.jpg", response.Filename)
	assert.Equal(t, models.MediaImage, response.Kind)
	assert.Equal(t, models.SessionUploaded, response.Status)

	// Session was registered for the returned id
	sess, err := f.sessions.Get(response.ID)
	require.NoError(t, err)
	assert.Equal(t, "/data/uploads/some-id.jpg", sess.FilePath)
}

func TestUploadImageRejectsUnsupportedExtension(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := multipartBody(t, "file", "document.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	f.handler.UploadImage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.storage.AssertNotCalled(t, "SaveUpload")
}

func TestUploadImageMissingFileField(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := multipartBody(t, "wrong_field", "photo.jpg", []byte{0xFF})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	f.handler.UploadImage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadVideoAcceptsVideoExtensions(t *testing.T) {
	f := newHandlerFixture(t)
	f.storage.On("SaveUpload", mock.AnythingOfType("string"), "clip.mp4", mock.Anything).
		Return("/data/uploads/some-id.mp4", nil)

	body, contentType := multipartBody(t, "file", "clip.mp4", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload/video", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	f.handler.UploadVideo(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, models.MediaVideo, response.Kind)
}

func TestAnalyzeImage(t *testing.T) {
	f := newHandlerFixture(t)

	expected := &models.AnalysisResult{
		ImageID:     "img-1",
		Fingerprint: "abc123",
		Timestamp:   time.Now().UTC(),
	}
	f.analysis.On("AnalyzeImage", mock.Anything, "img-1").Return(expected, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/image/img-1", nil)
	req = mux.SetURLVars(req, map[string]string{"image_id": "img-1"})
	rec := httptest.NewRecorder()

	f.handler.AnalyzeImage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response models.AnalysisResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "img-1", response.ImageID)
	assert.Equal(t, "abc123", response.Fingerprint)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAnalyzeImageSessionNotFound(t *testing.T) {
	f := newHandlerFixture(t)
	f.analysis.On("AnalyzeImage", mock.Anything, "nope").Return(nil, models.ErrSessionNotFound)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/image/nope", nil)
	req = mux.SetURLVars(req, map[string]string{"image_id": "nope"})
	rec := httptest.NewRecorder()

	f.handler.AnalyzeImage(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeImageVisionUnavailable(t *testing.T) {
	f := newHandlerFixture(t)
	wrapped := models.NewAnalysisError("img-1", "vision analysis failed", models.ErrVisionUnavailable)
	f.analysis.On("AnalyzeImage", mock.Anything, "img-1").Return(nil, wrapped)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/image/img-1", nil)
	req = mux.SetURLVars(req, map[string]string{"image_id": "img-1"})
	rec := httptest.NewRecorder()

	f.handler.AnalyzeImage(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestChatAboutImage(t *testing.T) {
	f := newHandlerFixture(t)

	expected := &models.ChatResponse{ImageID: "img-1", Response: "Central Paris."}
	f.analysis.On("ChatAboutImage", mock.Anything, "img-1", "Where is this?").Return(expected, nil)

	body := strings.NewReader(`{"message": "Where is this?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/image/img-1", body)
	req = mux.SetURLVars(req, map[string]string{"image_id": "img-1"})
	rec := httptest.NewRecorder()

	f.handler.ChatAboutImage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response models.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "Central Paris.", response.Response)
}

func TestChatAboutImageEmptyMessage(t *testing.T) {
	f := newHandlerFixture(t)

	body := strings.NewReader(`{"message": "   "}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/image/img-1", body)
	req = mux.SetURLVars(req, map[string]string{"image_id": "img-1"})
	rec := httptest.NewRecorder()

	f.handler.ChatAboutImage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.analysis.AssertNotCalled(t, "ChatAboutImage")
}

func TestAnalyzeVideoUsesDefaults(t *testing.T) {
	f := newHandlerFixture(t)

	expected := &models.VideoAnalysis{
		VideoID: "vid-1",
		Summary: models.VideoSummary{Total: 2, Succeeded: 2},
	}
	f.analysis.On("AnalyzeVideo", mock.Anything, "vid-1", time.Second, 10).Return(expected, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/video/vid-1", nil)
	req = mux.SetURLVars(req, map[string]string{"video_id": "vid-1"})
	rec := httptest.NewRecorder()

	f.handler.AnalyzeVideo(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.analysis.AssertExpectations(t)
}

func TestAnalyzeVideoCustomParameters(t *testing.T) {
	f := newHandlerFixture(t)

	expected := &models.VideoAnalysis{
		VideoID: "vid-1",
		Summary: models.VideoSummary{Total: 5, Succeeded: 5},
	}
	f.analysis.On("AnalyzeVideo", mock.Anything, "vid-1", 2*time.Second, 5).Return(expected, nil)

	body := strings.NewReader(`{"interval_seconds": 2, "max_frames": 5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/video/vid-1", body)
	req = mux.SetURLVars(req, map[string]string{"video_id": "vid-1"})
	rec := httptest.NewRecorder()

	f.handler.AnalyzeVideo(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.analysis.AssertExpectations(t)
}

func TestAnalyzeVideoMalformedBody(t *testing.T) {
	f := newHandlerFixture(t)

	body := strings.NewReader(`{"interval_seconds": `)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/video/vid-1", body)
	req = mux.SetURLVars(req, map[string]string{"video_id": "vid-1"})
	rec := httptest.NewRecorder()

	f.handler.AnalyzeVideo(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.analysis.AssertNotCalled(t, "AnalyzeVideo")
}

func TestAnalyzeVideoPartialSuccessUsesMultiStatus(t *testing.T) {
	f := newHandlerFixture(t)

	partial := &models.VideoAnalysis{
		VideoID: "vid-1",
		Summary: models.VideoSummary{Total: 3, Succeeded: 2, Failed: 1},
	}
	f.analysis.On("AnalyzeVideo", mock.Anything, "vid-1", time.Second, 10).Return(partial, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/video/vid-1", nil)
	req = mux.SetURLVars(req, map[string]string{"video_id": "vid-1"})
	rec := httptest.NewRecorder()

	f.handler.AnalyzeVideo(rec, req)

	assert.Equal(t, http.StatusMultiStatus, rec.Code)
}

func TestDetectObjects(t *testing.T) {
	f := newHandlerFixture(t)
	f.sessions.Create("img-1", models.MediaImage, "photo.jpg", "/data/uploads/img-1.jpg")

	expected := &models.DetectionResult{
		ImageID: "img-1",
		Model:   "nano",
		Summary: models.DetectionSummary{TotalObjects: 1, HasPeople: true},
	}
	f.detector.On("DetectObjects", mock.Anything, "img-1", "/data/uploads/img-1.jpg", "nano", 0.25).
		Return(expected, nil)

	body := strings.NewReader(`{"image_id": "img-1", "model": "nano"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/detect/objects", body)
	rec := httptest.NewRecorder()

	f.handler.DetectObjects(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response models.DetectionResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.True(t, response.Summary.HasPeople)
}

func TestDetectObjectsUnknownSession(t *testing.T) {
	f := newHandlerFixture(t)

	body := strings.NewReader(`{"image_id": "nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/detect/objects", body)
	rec := httptest.NewRecorder()

	f.handler.DetectObjects(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDetectObjectsDetectorUnavailable(t *testing.T) {
	f := newHandlerFixture(t)
	f.sessions.Create("img-1", models.MediaImage, "photo.jpg", "/data/uploads/img-1.jpg")
	f.detector.On("DetectObjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, models.ErrDetectorUnavailable)

	body := strings.NewReader(`{"image_id": "img-1", "confidence": 0.5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/detect/objects", body)
	rec := httptest.NewRecorder()

	f.handler.DetectObjects(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSessionStatus(t *testing.T) {
	f := newHandlerFixture(t)
	f.sessions.Create("img-1", models.MediaImage, "photo.jpg", "/data/uploads/img-1.jpg")

	req := httptest.NewRequest(http.MethodGet, "/api/session/img-1", nil)
	req = mux.SetURLVars(req, map[string]string{"session_id": "img-1"})
	rec := httptest.NewRecorder()

	f.handler.SessionStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response models.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, models.SessionUploaded, response.Status)
}

func TestSessionStatusNotFound(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/session/nope", nil)
	req = mux.SetURLVars(req, map[string]string{"session_id": "nope"})
	rec := httptest.NewRecorder()

	f.handler.SessionStatus(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGeocodeForward(t *testing.T) {
	f := newHandlerFixture(t)

	results := []models.GeocodeResult{{Name: "Paris", PlaceName: "Paris, France", Latitude: 48.8566, Longitude: 2.3522}}
	f.mapbox.On("ForwardGeocode", mock.Anything, "Paris", 5).Return(results, nil)

	body := strings.NewReader(`{"query": "Paris"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/geocode/forward", body)
	rec := httptest.NewRecorder()

	f.handler.GeocodeForward(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Paris, France")
}

func TestGeocodeForwardMapboxUnavailable(t *testing.T) {
	f := newHandlerFixture(t)
	f.mapbox.On("ForwardGeocode", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, models.ErrMapboxUnavailable)

	body := strings.NewReader(`{"query": "Paris"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/geocode/forward", body)
	rec := httptest.NewRecorder()

	f.handler.GeocodeForward(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGeocodeReverse(t *testing.T) {
	f := newHandlerFixture(t)

	location := &models.GeoLocation{
		Coordinates: models.Coordinates{Latitude: 48.8566, Longitude: 2.3522},
		DisplayName: "Paris, France",
	}
	f.geo.On("ReverseGeocode", mock.Anything, 48.8566, 2.3522).Return(location, nil)

	body := strings.NewReader(`{"latitude": 48.8566, "longitude": 2.3522}`)
	req := httptest.NewRequest(http.MethodPost, "/api/geocode/reverse", body)
	rec := httptest.NewRecorder()

	f.handler.GeocodeReverse(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Paris, France")
}

func TestGeocodeReverseInvalidCoordinates(t *testing.T) {
	f := newHandlerFixture(t)
	f.geo.On("ReverseGeocode", mock.Anything, 200.0, 2.3522).Return(nil, models.ErrInvalidCoordinates)

	body := strings.NewReader(`{"latitude": 200, "longitude": 2.3522}`)
	req := httptest.NewRequest(http.MethodPost, "/api/geocode/reverse", body)
	rec := httptest.NewRecorder()

	f.handler.GeocodeReverse(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaticMap(t *testing.T) {
	f := newHandlerFixture(t)
	f.mapbox.On("StaticMapURL", 48.8566, 2.3522, 15.0, 600, 400).
		Return("https://maps.example.com/static.png", nil)

	body := strings.NewReader(`{"latitude": 48.8566, "longitude": 2.3522, "zoom": 15, "width": 600, "height": 400}`)
	req := httptest.NewRequest(http.MethodPost, "/api/static-map", body)
	rec := httptest.NewRecorder()

	f.handler.StaticMap(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://maps.example.com/static.png")
}

func TestSatelliteImage(t *testing.T) {
	f := newHandlerFixture(t)
	imageBytes := []byte{0x89, 0x50, 0x4E, 0x47}
	f.mapbox.On("SatelliteImage", mock.Anything, 48.8566, 2.3522, 16.0).Return(imageBytes, nil)

	body := strings.NewReader(`{"latitude": 48.8566, "longitude": 2.3522, "zoom": 16}`)
	req := httptest.NewRequest(http.MethodPost, "/api/location/satellite", body)
	rec := httptest.NewRecorder()

	f.handler.SatelliteImage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	raw, _ := io.ReadAll(rec.Body)
	assert.Equal(t, imageBytes, raw)
}

func TestCacheStats(t *testing.T) {
	f := newHandlerFixture(t)
	f.results.On("Stats").Return(models.CacheStats{Size: 3, Capacity: 100, Hits: 10, Misses: 5, HitRatio: 10.0 / 15.0})

	req := httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil)
	rec := httptest.NewRecorder()

	f.handler.CacheStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.CacheStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 3, stats.Size)
	assert.Equal(t, uint64(10), stats.Hits)
}

func TestCacheClear(t *testing.T) {
	f := newHandlerFixture(t)
	f.results.On("Clear", mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil)
	rec := httptest.NewRecorder()

	f.handler.CacheClear(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.results.AssertExpectations(t)
}

func TestGetStatusCodeForError(t *testing.T) {
	f := newHandlerFixture(t)

	cases := []struct {
		err  error
		want int
	}{
		{models.ErrSessionNotFound, http.StatusNotFound},
		{models.ErrVisionUnavailable, http.StatusServiceUnavailable},
		{models.ErrMapboxUnavailable, http.StatusServiceUnavailable},
		{models.ErrDetectorUnavailable, http.StatusServiceUnavailable},
		{models.ErrFFmpegUnavailable, http.StatusServiceUnavailable},
		{models.ErrRateLimitExceeded, http.StatusTooManyRequests},
		{models.ErrInvalidCoordinates, http.StatusBadRequest},
		{models.ErrEmptyUpload, http.StatusBadRequest},
		{models.ErrFetchTimeout, http.StatusRequestTimeout},
		{models.ErrInvalidDetectionParams, http.StatusBadRequest},
		{fmt.Errorf("%w: unknown model %q", models.ErrInvalidDetectionParams, "gigantic"), http.StatusBadRequest},
		{models.NewAnalysisError("img-1", "wrapped", models.ErrSessionNotFound), http.StatusNotFound},
		{models.NewAnalysisError("vid-1", "session is not a video upload", models.ErrWrongMediaKind), http.StatusBadRequest},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, f.handler.getStatusCodeForError(tc.err), "error: %v", tc.err)
	}
}
