package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockVideo is a mock implementation of video.Service
type MockVideo struct {
	mock.Mock
}

// ExtractFrames mocks the ExtractFrames method of video.Service
func (m *MockVideo) ExtractFrames(ctx context.Context, videoID, videoPath string, interval time.Duration, maxFrames int) ([]string, error) {
	args := m.Called(ctx, videoID, videoPath, interval, maxFrames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Available mocks the Available method of video.Service
func (m *MockVideo) Available() bool {
	args := m.Called()
	return args.Bool(0)
}
