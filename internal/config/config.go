package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	FrontendPort string
	BackendURL   string

	CacheType     string
	CacheCapacity int
	CacheTTL      time.Duration
	RedisURL      string

	DatabaseURL string

	GeminiAPIKey string
	MapboxAPIKey string
	DetectorURL  string
	NominatimURL string

	DataDir    string
	UploadsDir string
	FramesDir  string
	ResultsDir string

	GlobalRateLimitPerSec int
	PerIPRateLimitPerSec  int

	APITimeout           time.Duration
	MaxConcurrentFrames  int
	FrameInterval        time.Duration
	MaxFramesPerVideo    int
	MaxUploadSizeBytes   int64
	VisionMinCallSpacing time.Duration

	FrontendWaitForBackend bool
	HealthPollInterval     time.Duration
	HealthPollAttempts     int

	ServerReadTimeout     time.Duration
	ServerWriteTimeout    time.Duration
	ServerShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists (optional)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it: %v", err)
	}

	dataDir := getEnv("DATA_DIR", "./data")

	return &Config{
		Port:         getEnv("PORT", "8000"),
		FrontendPort: getEnv("FRONTEND_PORT", "8080"),
		BackendURL:   getEnv("BACKEND_URL", "http://localhost:8000"),

		CacheType:     getEnv("CACHE_TYPE", "memory"),
		CacheCapacity: getIntEnv("CACHE_CAPACITY", 100),
		CacheTTL:      getDurationEnv("CACHE_TTL", 3600*time.Second),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		MapboxAPIKey: getEnv("MAPBOX_API_KEY", ""),
		DetectorURL:  getEnv("DETECTOR_URL", ""),
		NominatimURL: getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),

		DataDir:    dataDir,
		UploadsDir: getEnv("UPLOADS_DIR", filepath.Join(dataDir, "uploads")),
		FramesDir:  getEnv("FRAMES_DIR", filepath.Join(dataDir, "frames")),
		ResultsDir: getEnv("RESULTS_DIR", filepath.Join(dataDir, "results")),

		GlobalRateLimitPerSec: getIntEnv("GLOBAL_RATE_LIMIT_PER_SEC", 100),
		PerIPRateLimitPerSec:  getIntEnv("PER_IP_RATE_LIMIT_PER_SEC", 10),

		APITimeout:           getDurationEnv("API_TIMEOUT", 60*time.Second),
		MaxConcurrentFrames:  getIntEnv("MAX_CONCURRENT_FRAMES", 3),
		FrameInterval:        getDurationEnv("FRAME_INTERVAL", 1*time.Second),
		MaxFramesPerVideo:    getIntEnv("MAX_FRAMES_PER_VIDEO", 10),
		MaxUploadSizeBytes:   getInt64Env("MAX_UPLOAD_SIZE_BYTES", 50*1024*1024),
		VisionMinCallSpacing: getDurationEnv("VISION_MIN_CALL_SPACING", 1*time.Second),

		FrontendWaitForBackend: getBoolEnv("FRONTEND_WAIT_FOR_BACKEND", true),
		HealthPollInterval:     getDurationEnv("HEALTH_POLL_INTERVAL", 10*time.Second),
		HealthPollAttempts:     getIntEnv("HEALTH_POLL_ATTEMPTS", 30),

		ServerReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
		ServerShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal) * time.Second
		}
	}
	return defaultValue
}
