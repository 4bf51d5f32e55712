package mocks

import (
	"context"
	"time"

	"geospy/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockResultCache is a mock implementation of resultcache.Service
type MockResultCache struct {
	mock.Mock
}

// Get mocks the Get method of resultcache.Service
func (m *MockResultCache) Get(ctx context.Context, fingerprint string) (*models.AnalysisResult, error) {
	args := m.Called(ctx, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

// Set mocks the Set method of resultcache.Service
func (m *MockResultCache) Set(ctx context.Context, fingerprint string, result *models.AnalysisResult, ttl time.Duration) error {
	args := m.Called(ctx, fingerprint, result, ttl)
	return args.Error(0)
}

// Delete mocks the Delete method of resultcache.Service
func (m *MockResultCache) Delete(ctx context.Context, fingerprint string) error {
	args := m.Called(ctx, fingerprint)
	return args.Error(0)
}

// Clear mocks the Clear method of resultcache.Service
func (m *MockResultCache) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Stats mocks the Stats method of resultcache.Service
func (m *MockResultCache) Stats() models.CacheStats {
	args := m.Called()
	return args.Get(0).(models.CacheStats)
}
