package http

import (
	"context"
	"net/http"
	"time"

	"geospy/internal/logger"
	"geospy/internal/ratelimit"

	"github.com/gorilla/mux"
)

// Server represents the HTTP server with all dependencies
type Server struct {
	handler *Handler
	logger  logger.Service
	server  *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	addr string,
	handler *Handler,
	logger logger.Service,
	rateLimiter ratelimit.Service,
	readTimeout, writeTimeout time.Duration,
) *Server {
	router := mux.NewRouter()

	srv := &Server{
		handler: handler,
		logger:  logger,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}

	// Register middleware (order matters: logging -> rate limiting -> cors -> recovery)
	router.Use(loggingMiddleware(logger))
	router.Use(rateLimitingMiddleware(rateLimiter, logger))
	router.Use(corsMiddleware())
	router.Use(recoveryMiddleware(logger))

	srv.registerRoutes(router)

	return srv
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes(router *mux.Router) {
	// Health check, also used by frontend readiness polling
	router.HandleFunc("/api/session/health", s.handler.HealthCheck).Methods("GET")

	// Uploads and analysis
	router.HandleFunc("/api/upload/image", s.handler.UploadImage).Methods("POST")
	router.HandleFunc("/api/analyze/image/{image_id}", s.handler.AnalyzeImage).Methods("POST")
	router.HandleFunc("/api/chat/image/{image_id}", s.handler.ChatAboutImage).Methods("POST")
	router.HandleFunc("/api/upload/video", s.handler.UploadVideo).Methods("POST")
	router.HandleFunc("/api/analyze/video/{video_id}", s.handler.AnalyzeVideo).Methods("POST")
	router.HandleFunc("/api/detect/objects", s.handler.DetectObjects).Methods("POST")
	router.HandleFunc("/api/session/{session_id}", s.handler.SessionStatus).Methods("GET")

	// Geocoding and imagery
	router.HandleFunc("/api/geocode/forward", s.handler.GeocodeForward).Methods("POST")
	router.HandleFunc("/api/geocode/reverse", s.handler.GeocodeReverse).Methods("POST")
	router.HandleFunc("/api/static-map", s.handler.StaticMap).Methods("POST")
	router.HandleFunc("/api/location/satellite", s.handler.SatelliteImage).Methods("POST")

	// Cache administration
	router.HandleFunc("/api/cache/stats", s.handler.CacheStats).Methods("GET")
	router.HandleFunc("/api/cache/clear", s.handler.CacheClear).Methods("POST")

	// Root handler
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"GeoSpy Analysis API","version":"1.0.0","endpoints":["/api/session/health","/api/upload/image","/api/analyze/image/{image_id}","/api/chat/image/{image_id}","/api/upload/video","/api/analyze/video/{video_id}","/api/detect/objects","/api/session/{session_id}","/api/geocode/forward","/api/geocode/reverse","/api/static-map","/api/location/satellite","/api/cache/stats","/api/cache/clear"]}`))
	}).Methods("GET")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.LogInfo(context.Background(), logger.OpServerStart, "Starting HTTP server", map[string]interface{}{
		"addr": s.server.Addr,
	})

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.LogInfo(ctx, logger.OpServerShutdown, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
