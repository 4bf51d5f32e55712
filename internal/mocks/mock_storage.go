package mocks

import (
	"io"

	"geospy/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of storage.Service
type MockStorage struct {
	mock.Mock
}

// SaveUpload mocks the SaveUpload method of storage.Service
func (m *MockStorage) SaveUpload(id string, filename string, content io.Reader) (string, error) {
	args := m.Called(id, filename, content)
	return args.String(0), args.Error(1)
}

// Fingerprint mocks the Fingerprint method of storage.Service
func (m *MockStorage) Fingerprint(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

// SaveResult mocks the SaveResult method of storage.Service
func (m *MockStorage) SaveResult(imageID string, result *models.AnalysisResult) (string, error) {
	args := m.Called(imageID, result)
	return args.String(0), args.Error(1)
}

// LoadResult mocks the LoadResult method of storage.Service
func (m *MockStorage) LoadResult(imageID string) (*models.AnalysisResult, error) {
	args := m.Called(imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

// UploadsDir mocks the UploadsDir method of storage.Service
func (m *MockStorage) UploadsDir() string {
	args := m.Called()
	return args.String(0)
}

// FramesDir mocks the FramesDir method of storage.Service
func (m *MockStorage) FramesDir() string {
	args := m.Called()
	return args.String(0)
}

// ResultsDir mocks the ResultsDir method of storage.Service
func (m *MockStorage) ResultsDir() string {
	args := m.Called()
	return args.String(0)
}
