package storage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"geospy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *FileStorage {
	t.Helper()
	base := t.TempDir()
	s, err := NewFileStorage(
		filepath.Join(base, "uploads"),
		filepath.Join(base, "frames"),
		filepath.Join(base, "results"),
	)
	require.NoError(t, err)
	return s
}

func TestFileStorage_SaveUpload(t *testing.T) {
	s := newTestStorage(t)

	path, err := s.SaveUpload("img-1", "drone_shot.JPG", strings.NewReader("image-bytes"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(s.UploadsDir(), "img-1.jpg"), path)
}

func TestFileStorage_SaveUpload_Empty(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.SaveUpload("img-1", "empty.jpg", strings.NewReader(""))
	assert.ErrorIs(t, err, models.ErrEmptyUpload)
}

func TestFileStorage_Fingerprint_Stable(t *testing.T) {
	s := newTestStorage(t)

	pathA, err := s.SaveUpload("a", "one.jpg", strings.NewReader("same-content"))
	require.NoError(t, err)
	pathB, err := s.SaveUpload("b", "two.jpg", strings.NewReader("same-content"))
	require.NoError(t, err)

	fpA, err := s.Fingerprint(pathA)
	require.NoError(t, err)
	fpB, err := s.Fingerprint(pathB)
	require.NoError(t, err)

	// Identical content yields identical fingerprints regardless of id
	assert.Equal(t, fpA, fpB)
	assert.Len(t, fpA, 64)
}

func TestFileStorage_Fingerprint_DiffersByContent(t *testing.T) {
	s := newTestStorage(t)

	pathA, err := s.SaveUpload("a", "one.jpg", strings.NewReader("content-a"))
	require.NoError(t, err)
	pathB, err := s.SaveUpload("b", "two.jpg", strings.NewReader("content-b"))
	require.NoError(t, err)

	fpA, err := s.Fingerprint(pathA)
	require.NoError(t, err)
	fpB, err := s.Fingerprint(pathB)
	require.NoError(t, err)

	assert.NotEqual(t, fpA, fpB)
}

func TestFileStorage_SaveAndLoadResult(t *testing.T) {
	s := newTestStorage(t)

	result := &models.AnalysisResult{
		ImageID:     "img-1",
		Fingerprint: "abc",
		Timestamp:   time.Now().UTC().Truncate(time.Second),
	}

	path, err := s.SaveResult("img-1", result)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.ResultsDir(), "img-1.json"), path)

	loaded, err := s.LoadResult("img-1")
	require.NoError(t, err)
	assert.Equal(t, result.ImageID, loaded.ImageID)
	assert.Equal(t, result.Fingerprint, loaded.Fingerprint)
}

func TestFileStorage_LoadResult_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.LoadResult("no-such-id")
	assert.Error(t, err)
}
