package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"geospy/internal/analysis"
	"geospy/internal/cache"
	"geospy/internal/cache/resultcache"
	"geospy/internal/config"
	"geospy/internal/detect"
	"geospy/internal/frontend"
	"geospy/internal/geo"
	"geospy/internal/http"
	"geospy/internal/launcher"
	"geospy/internal/logger"
	"geospy/internal/mapbox"
	"geospy/internal/metadata"
	"geospy/internal/models"
	"geospy/internal/ratelimit"
	"geospy/internal/session"
	"geospy/internal/storage"
	"geospy/internal/video"
	"geospy/internal/vision"
)

func main() {
	modeArg := "backend"
	if len(os.Args) > 1 {
		modeArg = os.Args[1]
	}

	mode, err := launcher.ParseMode(modeArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: geospy [backend|frontend|django_frontend|all|debug|test-backend]")
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	// Initialize logger: database sink when configured, stdout fallback
	// otherwise (missing credentials must not prevent startup)
	appLogger := initializeLogger(cfg)
	defer appLogger.Close()

	startupCtx := logger.WithLogEvent(context.Background(), logger.NewInternalLogEvent())

	switch mode {
	case launcher.ModeBackend:
		runBackend(startupCtx, cfg, appLogger, false)
	case launcher.ModeDebug:
		runBackend(startupCtx, cfg, appLogger, true)
	case launcher.ModeFrontend:
		runFrontend(startupCtx, cfg, appLogger)
	case launcher.ModeAll:
		go runBackend(startupCtx, cfg, appLogger, false)
		runFrontend(startupCtx, cfg, appLogger)
	case launcher.ModeTestBackend:
		runHealthProbe(startupCtx, cfg, appLogger)
	}
}

// runBackend wires up and runs the analysis API server
func runBackend(startupCtx context.Context, cfg *config.Config, appLogger logger.Service, debug bool) {
	appLogger.LogInfo(startupCtx, logger.OpServerStart, "Starting GeoSpy Analysis API", map[string]interface{}{
		"version": "1.0.0",
		"config": map[string]interface{}{
			"port":       cfg.Port,
			"cache_type": cfg.CacheType,
			"cache_ttl":  cfg.CacheTTL.Seconds(),
			"capacity":   cfg.CacheCapacity,
		},
	})

	if debug {
		fmt.Printf("🔧 Config: port=%s cache=%s capacity=%d ttl=%s data=%s\n",
			cfg.Port, cfg.CacheType, cfg.CacheCapacity, cfg.CacheTTL, cfg.DataDir)
	}

	// Initialize cache and result cache
	cacheService, err := initializeCache(cfg)
	if err != nil {
		appLogger.LogError(startupCtx, "cache_init", "", "Failed to initialize cache", err, models.LogSeverityHigh, nil)
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	results := resultcache.New(cacheService, cfg.CacheTTL)

	// Initialize storage directories
	fileStorage, err := storage.NewFileStorage(cfg.UploadsDir, cfg.FramesDir, cfg.ResultsDir)
	if err != nil {
		appLogger.LogError(startupCtx, "storage_init", "", "Failed to initialize storage", err, models.LogSeverityHigh, nil)
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	sessions := session.NewStore()
	extractor := metadata.NewExtractor()

	// External collaborators: missing credentials degrade to warnings, the
	// affected endpoints answer 503
	visionClient := vision.NewGeminiClient(cfg.GeminiAPIKey, cfg.APITimeout, cfg.VisionMinCallSpacing)
	if !visionClient.Available() {
		fmt.Println("⚠️  GEMINI_API_KEY not set: vision analysis unavailable, running on EXIF metadata only")
	}

	mapboxClient := mapbox.NewClient(cfg.MapboxAPIKey, cfg.APITimeout)
	if !mapboxClient.Available() {
		fmt.Println("⚠️  MAPBOX_API_KEY not set: geocoding and satellite imagery endpoints unavailable")
	}

	detector := detect.NewClient(cfg.DetectorURL, cfg.APITimeout)
	if !detector.Available() {
		fmt.Println("⚠️  DETECTOR_URL not set: object detection endpoint unavailable")
	}

	frameExtractor := video.NewFFmpegExtractor(cfg.FramesDir)
	if !frameExtractor.Available() {
		fmt.Println("⚠️  ffmpeg not found in PATH: video analysis unavailable")
	}

	geoService := geo.NewNominatimService(cfg.NominatimURL, cfg.APITimeout)

	rateLimiter := ratelimit.NewTwoTierRateLimiter(
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
	)

	analysisService := analysis.NewService(
		fileStorage,
		sessions,
		extractor,
		visionClient,
		geoService,
		frameExtractor,
		results,
		appLogger,
		cfg.MaxConcurrentFrames,
	)

	handler := http.NewHandler(
		analysisService,
		fileStorage,
		sessions,
		mapboxClient,
		detector,
		geoService,
		results,
		appLogger,
		cfg.MaxUploadSizeBytes,
		cfg.FrameInterval,
		cfg.MaxFramesPerVideo,
	)

	addr := ":" + cfg.Port
	server := http.NewServer(
		addr,
		handler,
		appLogger,
		rateLimiter,
		cfg.ServerReadTimeout,
		cfg.ServerWriteTimeout,
	)

	go func() {
		if err := server.Start(); err != nil {
			appLogger.LogError(context.Background(), logger.OpServerStart, "", "Server failed to start", err, models.LogSeverityHigh, map[string]interface{}{"addr": addr})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	fmt.Printf("🚀 GeoSpy Analysis API started on %s\n", addr)

	waitForShutdown(server.Shutdown, cfg, appLogger)
}

// runFrontend runs the browser UI, optionally waiting for the backend first
func runFrontend(startupCtx context.Context, cfg *config.Config, appLogger logger.Service) {
	srv := frontend.NewServer(":"+cfg.FrontendPort, cfg.BackendURL, appLogger)

	if cfg.FrontendWaitForBackend {
		poller := launcher.NewPoller(
			cfg.BackendURL+"/api/session/health",
			cfg.HealthPollInterval,
			cfg.HealthPollAttempts,
			appLogger,
		)
		if err := poller.Wait(startupCtx); err != nil {
			// Serve anyway so the operator sees the failure in the UI
			appLogger.LogError(startupCtx, logger.OpHealthCheck, "", "Backend unreachable, serving in degraded mode", err, models.LogSeverityMedium, nil)
			fmt.Println("⚠️  Backend unreachable: frontend running in degraded mode")
			srv.SetDegraded(true)
		}
	}

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.LogError(context.Background(), logger.OpServerStart, "", "Frontend failed to start", err, models.LogSeverityHigh, nil)
			log.Fatalf("Frontend failed to start: %v", err)
		}
	}()

	fmt.Printf("🚀 GeoSpy frontend started on :%s (backend: %s)\n", cfg.FrontendPort, cfg.BackendURL)

	waitForShutdown(srv.Shutdown, cfg, appLogger)
}

// runHealthProbe polls backend health and exits with the probe status
func runHealthProbe(startupCtx context.Context, cfg *config.Config, appLogger logger.Service) {
	poller := launcher.NewPoller(
		cfg.BackendURL+"/api/session/health",
		cfg.HealthPollInterval,
		cfg.HealthPollAttempts,
		appLogger,
	)

	if err := poller.Wait(startupCtx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Backend not healthy: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Backend healthy")
}

// waitForShutdown blocks on SIGINT/SIGTERM and shuts the server down gracefully
func waitForShutdown(shutdown func(context.Context) error, cfg *config.Config, appLogger logger.Service) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n🛑 Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		appLogger.LogError(ctx, logger.OpServerShutdown, "", "Shutdown error", err, models.LogSeverityMedium, nil)
		log.Printf("Shutdown error: %v", err)
	} else {
		appLogger.LogInfo(ctx, logger.OpServerShutdown, "Shutdown completed successfully", nil)
		fmt.Println("✅ Shutdown completed")
	}
}

// initializeLogger picks the database logger when DATABASE_URL is set and
// falls back to stdout logging otherwise
func initializeLogger(cfg *config.Config) logger.Service {
	if cfg.DatabaseURL == "" {
		fmt.Println("⚠️  DATABASE_URL not set: logging to stdout")
		return logger.NewStdoutLogger()
	}

	db, err := logger.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		fmt.Printf("⚠️  Database logging unavailable (%v): logging to stdout\n", err)
		return logger.NewStdoutLogger()
	}

	return logger.NewDatabaseLogger(db)
}

// initializeCache selects the cache backend from configuration
func initializeCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.CacheType {
	case "redis":
		return cache.NewRedisCache(cfg.RedisURL)
	case "memory":
		return cache.NewLRUCache(cfg.CacheCapacity)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
