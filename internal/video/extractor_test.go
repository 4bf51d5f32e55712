package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geospy/internal/models"
)

// fakeFFmpeg writes a shell script that creates the requested number of
// frame files from the output pattern ffmpeg would receive
func fakeFFmpeg(t *testing.T, frames int) string {
	t.Helper()
	script := filepath.Join(t.TempDir(), "ffmpeg")
	body := fmt.Sprintf("#!/bin/sh\nfor last; do :; done\ni=1\nwhile [ $i -le %d ]; do\n  out=$(printf \"$last\" $i)\n  : > \"$out\"\n  i=$((i+1))\ndone\n", frames)
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

func TestExtractFrames(t *testing.T) {
	framesDir := t.TempDir()
	extractor := &FFmpegExtractor{binary: fakeFFmpeg(t, 3), framesDir: framesDir}

	frames, err := extractor.ExtractFrames(context.Background(), "vid-1", "input.mp4", time.Second, 10)

	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, filepath.Join(framesDir, "vid-1_frame_0001.jpg"), frames[0])
	assert.Equal(t, filepath.Join(framesDir, "vid-1_frame_0003.jpg"), frames[2])
}

func TestExtractFramesCapsAtMaxFrames(t *testing.T) {
	framesDir := t.TempDir()
	extractor := &FFmpegExtractor{binary: fakeFFmpeg(t, 5), framesDir: framesDir}

	frames, err := extractor.ExtractFrames(context.Background(), "vid-1", "input.mp4", time.Second, 2)

	require.NoError(t, err)
	assert.Len(t, frames, 2)
}

func TestExtractFramesWithoutBinary(t *testing.T) {
	extractor := &FFmpegExtractor{binary: "", framesDir: t.TempDir()}

	_, err := extractor.ExtractFrames(context.Background(), "vid-1", "input.mp4", time.Second, 10)

	assert.ErrorIs(t, err, models.ErrFFmpegUnavailable)
	assert.False(t, extractor.Available())
}

func TestExtractFramesNoOutput(t *testing.T) {
	extractor := &FFmpegExtractor{binary: fakeFFmpeg(t, 0), framesDir: t.TempDir()}

	_, err := extractor.ExtractFrames(context.Background(), "vid-1", "input.mp4", time.Second, 10)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no frames extracted")
}

func TestExtractFramesBinaryFailure(t *testing.T) {
	script := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho boom >&2\nexit 1\n"), 0o755))
	extractor := &FFmpegExtractor{binary: script, framesDir: t.TempDir()}

	_, err := extractor.ExtractFrames(context.Background(), "vid-1", "input.mp4", time.Second, 10)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg failed")
}
