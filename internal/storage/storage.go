package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"geospy/internal/models"
)

// Service defines the interface for filesystem storage of uploads, extracted
// frames and analysis results
type Service interface {
	SaveUpload(id string, filename string, content io.Reader) (string, error)
	Fingerprint(path string) (string, error)
	SaveResult(imageID string, result *models.AnalysisResult) (string, error)
	LoadResult(imageID string) (*models.AnalysisResult, error)
	UploadsDir() string
	FramesDir() string
	ResultsDir() string
}

// FileStorage implements Service on the local filesystem. Uploaded originals,
// extracted video frames and processed results live under three separate
// directories for traceability.
type FileStorage struct {
	uploadsDir string
	framesDir  string
	resultsDir string
}

// NewFileStorage creates the storage layout, creating directories as needed
func NewFileStorage(uploadsDir, framesDir, resultsDir string) (*FileStorage, error) {
	for _, dir := range []string{uploadsDir, framesDir, resultsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	return &FileStorage{
		uploadsDir: uploadsDir,
		framesDir:  framesDir,
		resultsDir: resultsDir,
	}, nil
}

// SaveUpload streams an uploaded file to the uploads directory, named by its
// id with the original extension preserved
func (s *FileStorage) SaveUpload(id string, filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.uploadsDir, id+ext)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, content)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if written == 0 {
		os.Remove(path)
		return "", models.ErrEmptyUpload
	}

	return path, nil
}

// Fingerprint computes the SHA-256 content fingerprint of a stored file
func (s *FileStorage) Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for fingerprinting: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// SaveResult persists an analysis result as pretty-printed JSON in the
// results directory
func (s *FileStorage) SaveResult(imageID string, result *models.AnalysisResult) (string, error) {
	path := filepath.Join(s.resultsDir, imageID+".json")

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}

	return path, nil
}

// LoadResult reads a previously persisted analysis result
func (s *FileStorage) LoadResult(imageID string) (*models.AnalysisResult, error) {
	path := filepath.Join(s.resultsDir, imageID+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result file: %w", err)
	}

	return &result, nil
}

// UploadsDir returns the uploads directory path
func (s *FileStorage) UploadsDir() string { return s.uploadsDir }

// FramesDir returns the frames directory path
func (s *FileStorage) FramesDir() string { return s.framesDir }

// ResultsDir returns the results directory path
func (s *FileStorage) ResultsDir() string { return s.resultsDir }
