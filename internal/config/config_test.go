package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultValues(t *testing.T) {
	// Clear all relevant environment variables
	envVars := []string{
		"PORT", "FRONTEND_PORT", "BACKEND_URL", "CACHE_TYPE", "CACHE_CAPACITY",
		"CACHE_TTL", "REDIS_URL", "DATABASE_URL", "GEMINI_API_KEY",
		"MAPBOX_API_KEY", "DETECTOR_URL", "NOMINATIM_URL", "DATA_DIR",
		"UPLOADS_DIR", "FRAMES_DIR", "RESULTS_DIR",
		"GLOBAL_RATE_LIMIT_PER_SEC", "PER_IP_RATE_LIMIT_PER_SEC",
		"API_TIMEOUT", "MAX_CONCURRENT_FRAMES", "FRAME_INTERVAL",
		"MAX_FRAMES_PER_VIDEO", "FRONTEND_WAIT_FOR_BACKEND",
		"HEALTH_POLL_INTERVAL", "HEALTH_POLL_ATTEMPTS",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT",
	}

	for _, key := range envVars {
		os.Unsetenv(key)
	}

	cfg := Load()

	// Verify default values
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "8080", cfg.FrontendPort)
	assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
	assert.Equal(t, "memory", cfg.CacheType)
	assert.Equal(t, 100, cfg.CacheCapacity)
	assert.Equal(t, 3600*time.Second, cfg.CacheTTL)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.Empty(t, cfg.MapboxAPIKey)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.NominatimURL)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "data/uploads", cfg.UploadsDir)
	assert.Equal(t, "data/frames", cfg.FramesDir)
	assert.Equal(t, "data/results", cfg.ResultsDir)
	assert.Equal(t, 100, cfg.GlobalRateLimitPerSec)
	assert.Equal(t, 10, cfg.PerIPRateLimitPerSec)
	assert.Equal(t, 3, cfg.MaxConcurrentFrames)
	assert.Equal(t, 10, cfg.MaxFramesPerVideo)
	assert.True(t, cfg.FrontendWaitForBackend)
	assert.Equal(t, 10*time.Second, cfg.HealthPollInterval)
	assert.Equal(t, 30, cfg.HealthPollAttempts)
	assert.Equal(t, 30*time.Second, cfg.ServerShutdownTimeout)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("CACHE_TYPE", "redis")
	os.Setenv("CACHE_CAPACITY", "250")
	os.Setenv("CACHE_TTL", "7200")
	os.Setenv("GEMINI_API_KEY", "test-key")
	os.Setenv("DETECTOR_URL", "http://detector:9001")
	os.Setenv("HEALTH_POLL_INTERVAL", "5")
	os.Setenv("HEALTH_POLL_ATTEMPTS", "12")
	os.Setenv("FRONTEND_WAIT_FOR_BACKEND", "false")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("CACHE_TYPE")
		os.Unsetenv("CACHE_CAPACITY")
		os.Unsetenv("CACHE_TTL")
		os.Unsetenv("GEMINI_API_KEY")
		os.Unsetenv("DETECTOR_URL")
		os.Unsetenv("HEALTH_POLL_INTERVAL")
		os.Unsetenv("HEALTH_POLL_ATTEMPTS")
		os.Unsetenv("FRONTEND_WAIT_FOR_BACKEND")
	}()

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis", cfg.CacheType)
	assert.Equal(t, 250, cfg.CacheCapacity)
	assert.Equal(t, 7200*time.Second, cfg.CacheTTL)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "http://detector:9001", cfg.DetectorURL)
	assert.Equal(t, 5*time.Second, cfg.HealthPollInterval)
	assert.Equal(t, 12, cfg.HealthPollAttempts)
	assert.False(t, cfg.FrontendWaitForBackend)
}

func TestLoad_InvalidNumericValues(t *testing.T) {
	os.Setenv("CACHE_CAPACITY", "not-a-number")
	os.Setenv("HEALTH_POLL_ATTEMPTS", "3.5")
	defer func() {
		os.Unsetenv("CACHE_CAPACITY")
		os.Unsetenv("HEALTH_POLL_ATTEMPTS")
	}()

	cfg := Load()

	// Invalid values fall back to defaults
	assert.Equal(t, 100, cfg.CacheCapacity)
	assert.Equal(t, 30, cfg.HealthPollAttempts)
}
