package video

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"geospy/internal/models"
)

// Service defines the interface for video frame extraction
type Service interface {
	ExtractFrames(ctx context.Context, videoID, videoPath string, interval time.Duration, maxFrames int) ([]string, error)
	Available() bool
}

// FFmpegExtractor implements Service by shelling out to the ffmpeg binary
type FFmpegExtractor struct {
	binary    string
	framesDir string
}

// NewFFmpegExtractor creates a frame extractor writing into framesDir.
// The ffmpeg binary is resolved once; a missing binary yields an extractor
// whose calls fail with ErrFFmpegUnavailable.
func NewFFmpegExtractor(framesDir string) Service {
	binary, err := exec.LookPath("ffmpeg")
	if err != nil {
		binary = ""
	}
	return &FFmpegExtractor{
		binary:    binary,
		framesDir: framesDir,
	}
}

// Available reports whether the ffmpeg binary was found
func (e *FFmpegExtractor) Available() bool {
	return e.binary != ""
}

// ExtractFrames samples one frame per interval from the video, capped at
// maxFrames, and returns the written frame paths in frame order. Frames are
// named <video-id>_frame_NNNN.jpg.
func (e *FFmpegExtractor) ExtractFrames(ctx context.Context, videoID, videoPath string, interval time.Duration, maxFrames int) ([]string, error) {
	if !e.Available() {
		return nil, models.ErrFFmpegUnavailable
	}
	if interval <= 0 {
		interval = time.Second
	}
	if maxFrames <= 0 {
		maxFrames = 10
	}

	pattern := filepath.Join(e.framesDir, fmt.Sprintf("%s_frame_%%04d.jpg", videoID))

	// fps=1/interval samples one frame per interval seconds
	args := []string{
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=1/%g", interval.Seconds()),
		"-frames:v", fmt.Sprintf("%d", maxFrames),
		"-q:v", "2",
		"-y",
		pattern,
	}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("frame extraction canceled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, truncate(string(output), 512))
	}

	glob := filepath.Join(e.framesDir, fmt.Sprintf("%s_frame_*.jpg", videoID))
	frames, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames extracted from %s", videoPath)
	}

	sort.Strings(frames)
	if len(frames) > maxFrames {
		frames = frames[:maxFrames]
	}

	return frames, nil
}

// truncate bounds ffmpeg diagnostics included in error messages
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
