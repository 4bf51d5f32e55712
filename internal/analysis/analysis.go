package analysis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"geospy/internal/cache/resultcache"
	"geospy/internal/geo"
	"geospy/internal/logger"
	"geospy/internal/metadata"
	"geospy/internal/models"
	"geospy/internal/session"
	"geospy/internal/storage"
	"geospy/internal/video"
	"geospy/internal/vision"
)

// frameTimeout bounds the analysis of a single video frame
const frameTimeout = 120 * time.Second

// Service implements the AnalysisService interface
type Service struct {
	storage       storage.Service
	sessions      *session.Store
	metadata      metadata.Service
	vision        vision.Service
	geo           geo.Service
	video         video.Service
	results       resultcache.Service
	logger        logger.Service
	maxConcurrent int
}

// NewService creates a new analysis service
func NewService(
	storage storage.Service,
	sessions *session.Store,
	metadata metadata.Service,
	vision vision.Service,
	geo geo.Service,
	video video.Service,
	results resultcache.Service,
	logger logger.Service,
	maxConcurrent int,
) AnalysisService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Service{
		storage:       storage,
		sessions:      sessions,
		metadata:      metadata,
		vision:        vision,
		geo:           geo,
		video:         video,
		results:       results,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// AnalyzeImage runs the full geolocation pipeline for an uploaded image
func (s *Service) AnalyzeImage(ctx context.Context, imageID string) (*models.AnalysisResult, error) {
	sess, err := s.sessions.Get(imageID)
	if err != nil {
		return nil, err
	}
	if sess.Kind != models.MediaImage {
		return nil, models.NewAnalysisError(imageID, "session is not an image upload", models.ErrWrongMediaKind)
	}

	s.sessions.SetStatus(imageID, models.SessionAnalyzing)

	result, err := s.analyzePath(ctx, imageID, sess.FilePath)
	if err != nil {
		s.sessions.SetError(imageID, err.Error())
		return nil, err
	}

	s.sessions.SetStatus(imageID, models.SessionCompleted)
	return result, nil
}

// analyzePath runs the pipeline for a single file on disk. It is shared
// by image analysis and per-frame video analysis.
func (s *Service) analyzePath(ctx context.Context, imageID, path string) (*models.AnalysisResult, error) {
	start := time.Now()

	fingerprint, err := s.storage.Fingerprint(path)
	if err != nil {
		s.logger.LogError(ctx, logger.OpImageAnalysis, imageID, "Failed to fingerprint image", err, models.LogSeverityMedium, nil)
		return nil, models.NewAnalysisError(imageID, "failed to fingerprint image", err)
	}

	// Identical content is served from the result cache regardless of
	// which upload produced it
	if cached, err := s.results.Get(ctx, fingerprint); err == nil {
		s.logger.LogSuccess(ctx, logger.OpCacheHit, imageID, "Retrieved analysis from cache", map[string]interface{}{
			"fingerprint": fingerprint,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		// The cached struct is shared with concurrent readers; rebind on a copy
		out := *cached
		out.Cached = true
		out.ImageID = imageID
		return &out, nil
	}

	s.logger.LogInfo(ctx, logger.OpCacheMiss, fmt.Sprintf("Cache miss for image: %s", imageID), map[string]interface{}{
		"fingerprint": fingerprint,
	})

	meta, err := s.metadata.Extract(path)
	if err != nil {
		s.logger.LogError(ctx, logger.OpMetadataExtract, imageID, "Failed to extract metadata", err, models.LogSeverityLow, nil)
		// Analysis continues without metadata
		meta = nil
	}

	visionResult, err := s.vision.AnalyzeImage(ctx, path)
	if err != nil {
		if !errors.Is(err, models.ErrVisionUnavailable) {
			s.logger.LogError(ctx, logger.OpVisionCall, imageID, "Vision analysis failed", err, models.LogSeverityMedium, map[string]interface{}{
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return nil, models.NewAnalysisError(imageID, "vision analysis failed", err)
		}
		// Degraded mode: proceed on metadata alone
		s.logger.LogInfo(ctx, logger.OpVisionCall, "Vision service unavailable, using metadata only", map[string]interface{}{
			"image_id": imageID,
		})
		visionResult = nil
	}

	var gps *models.GPSData
	if meta != nil {
		gps = meta.GPS
	}
	location := s.geo.MergeLocationData(ctx, visionResult, gps)

	result := &models.AnalysisResult{
		ImageID:     imageID,
		Fingerprint: fingerprint,
		Metadata:    meta,
		Vision:      visionResult,
		Location:    location,
		Cached:      false,
		Timestamp:   time.Now().UTC(),
	}

	if _, err := s.storage.SaveResult(imageID, result); err != nil {
		s.logger.LogError(ctx, logger.OpImageAnalysis, imageID, "Failed to persist analysis result", err, models.LogSeverityLow, nil)
		// Don't fail the request if persistence fails
	}

	if err := s.results.Set(ctx, fingerprint, result, 0); err != nil {
		s.logger.LogError(ctx, "cache_set", imageID, "Failed to cache analysis result", err, models.LogSeverityLow, nil)
		// Don't fail the request if caching fails
	}

	s.logger.LogSuccess(ctx, logger.OpImageAnalysis, imageID, "Successfully completed image analysis", map[string]interface{}{
		"fingerprint": fingerprint,
		"duration_ms": time.Since(start).Milliseconds(),
		"cached":      false,
	})

	return result, nil
}

// ChatAboutImage answers a free-form question about an uploaded image
func (s *Service) ChatAboutImage(ctx context.Context, imageID, message string) (*models.ChatResponse, error) {
	sess, err := s.sessions.Get(imageID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		return nil, models.NewAnalysisError(imageID, "empty chat message", nil)
	}

	answer, err := s.vision.ChatAboutImage(ctx, sess.FilePath, message)
	if err != nil {
		s.logger.LogError(ctx, logger.OpImageChat, imageID, "Chat request failed", err, models.LogSeverityMedium, nil)
		return nil, err
	}

	s.logger.LogSuccess(ctx, logger.OpImageChat, imageID, "Answered chat question", map[string]interface{}{
		"message_length": len(message),
	})

	return &models.ChatResponse{
		ImageID:   imageID,
		Response:  answer,
		Timestamp: time.Now().UTC(),
	}, nil
}

// AnalyzeVideo extracts frames from an uploaded video and analyzes them
// concurrently
func (s *Service) AnalyzeVideo(ctx context.Context, videoID string, interval time.Duration, maxFrames int) (*models.VideoAnalysis, error) {
	start := time.Now()

	sess, err := s.sessions.Get(videoID)
	if err != nil {
		return nil, err
	}
	if sess.Kind != models.MediaVideo {
		return nil, models.NewAnalysisError(videoID, "session is not a video upload", models.ErrWrongMediaKind)
	}

	s.sessions.SetStatus(videoID, models.SessionAnalyzing)

	frames, err := s.video.ExtractFrames(ctx, videoID, sess.FilePath, interval, maxFrames)
	if err != nil {
		s.logger.LogError(ctx, logger.OpFrameExtract, videoID, "Frame extraction failed", err, models.LogSeverityMedium, nil)
		s.sessions.SetError(videoID, err.Error())
		return nil, models.NewAnalysisError(videoID, "frame extraction failed", err)
	}

	s.logger.LogSuccess(ctx, logger.OpFrameExtract, videoID, "Extracted frames", map[string]interface{}{
		"frames_count": len(frames),
		"duration_ms":  time.Since(start).Milliseconds(),
	})

	// Create results channel and response aggregator
	resultsChan := make(chan models.FrameResult, len(frames))
	responseChan := make(chan *models.VideoAnalysis, 1)

	go s.aggregateFrames(videoID, resultsChan, len(frames), responseChan)

	// Use semaphore to limit concurrent frame analyses
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, framePath := range frames {
		wg.Add(1)

		go func(index int, path string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			frameCtx, cancel := context.WithTimeout(ctx, frameTimeout)
			defer cancel()

			frameID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

			frame := models.FrameResult{
				FramePath: path,
				Index:     index,
			}
			result, err := s.analyzePath(frameCtx, frameID, path)
			if err != nil {
				frame.Error = err.Error()
				s.logger.LogError(frameCtx, logger.OpVideoAnalysis, frameID, "Failed to analyze frame", err, models.LogSeverityMedium, nil)
			} else {
				frame.Success = true
				frame.Result = result
			}

			resultsChan <- frame
		}(i, framePath)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	response := <-responseChan

	if response.Summary.Succeeded == 0 && response.Summary.Total > 0 {
		s.sessions.SetError(videoID, "all frame analyses failed")
	} else {
		s.sessions.SetStatus(videoID, models.SessionCompleted)
	}

	s.logger.LogSuccess(ctx, logger.OpVideoAnalysis, videoID, "Completed video analysis", map[string]interface{}{
		"total_frames": response.Summary.Total,
		"successful":   response.Summary.Succeeded,
		"failed":       response.Summary.Failed,
		"duration_ms":  time.Since(start).Milliseconds(),
	})

	return response, nil
}

// aggregateFrames collects per-frame results and builds the final response
// in frame order
func (s *Service) aggregateFrames(videoID string, resultsChan <-chan models.FrameResult, totalFrames int, responseChan chan<- *models.VideoAnalysis) {
	frames := make([]models.FrameResult, 0, totalFrames)
	summary := models.VideoSummary{Total: totalFrames}

	for frame := range resultsChan {
		frames = append(frames, frame)
		if frame.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	// Workers finish out of order; restore frame order for the response
	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Index < frames[j].Index
	})

	responseChan <- &models.VideoAnalysis{
		VideoID:   videoID,
		Frames:    frames,
		Summary:   summary,
		Timestamp: time.Now().UTC(),
	}
}
