package frontend

import (
	"context"
	"html/template"
	"net/http"
	"sync/atomic"
	"time"

	"geospy/internal/logger"
	"geospy/internal/models"
)

// indexTemplate is the single-page upload and results UI. All analysis
// work happens through the backend API; this page only submits to it.
const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>GeoSpy</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
.banner { background: #fff3cd; border: 1px solid #ffc107; padding: 0.75rem; margin-bottom: 1rem; }
fieldset { margin-bottom: 1.5rem; }
pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; }
</style>
</head>
<body>
<h1>GeoSpy</h1>
{{if .Degraded}}
<div class="banner">Backend is unreachable. Uploads and analysis are unavailable until it recovers.</div>
{{end}}
<fieldset>
<legend>Analyze an image</legend>
<form id="image-form">
<input type="file" name="file" accept="image/*" required>
<button type="submit" {{if .Degraded}}disabled{{end}}>Upload &amp; Analyze</button>
</form>
</fieldset>
<fieldset>
<legend>Analyze a video</legend>
<form id="video-form">
<input type="file" name="file" accept="video/*" required>
<button type="submit" {{if .Degraded}}disabled{{end}}>Upload &amp; Analyze</button>
</form>
</fieldset>
<pre id="result">Results appear here.</pre>
<script>
const backend = {{.BackendURL}};
async function run(form, uploadPath, analyzePrefix) {
  const data = new FormData(form);
  const out = document.getElementById("result");
  out.textContent = "Uploading...";
  try {
    const up = await fetch(backend + uploadPath, { method: "POST", body: data });
    const upload = await up.json();
    if (!up.ok) { out.textContent = JSON.stringify(upload, null, 2); return; }
    out.textContent = "Analyzing " + upload.id + "...";
    const an = await fetch(backend + analyzePrefix + upload.id, { method: "POST" });
    out.textContent = JSON.stringify(await an.json(), null, 2);
  } catch (err) {
    out.textContent = "Request failed: " + err;
  }
}
document.getElementById("image-form").addEventListener("submit", e => {
  e.preventDefault();
  run(e.target, "/api/upload/image", "/api/analyze/image/");
});
document.getElementById("video-form").addEventListener("submit", e => {
  e.preventDefault();
  run(e.target, "/api/upload/video", "/api/analyze/video/");
});
</script>
</body>
</html>`

// Server serves the minimal browser UI
type Server struct {
	backendURL string
	degraded   atomic.Bool
	tmpl       *template.Template
	logger     logger.Service
	server     *http.Server
}

// NewServer creates a frontend server talking to the given backend
func NewServer(addr, backendURL string, logger logger.Service) *Server {
	mux := http.NewServeMux()

	srv := &Server{
		backendURL: backendURL,
		tmpl:       template.Must(template.New("index").Parse(indexTemplate)),
		logger:     logger,
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}

	mux.HandleFunc("/", srv.handleIndex)
	mux.HandleFunc("/health", srv.handleHealth)

	return srv
}

// SetDegraded toggles degraded mode. The page still renders, with upload
// controls disabled and a warning banner shown.
func (s *Server) SetDegraded(degraded bool) {
	s.degraded.Store(degraded)
}

// Degraded reports whether the server is in degraded mode
func (s *Server) Degraded() bool {
	return s.degraded.Load()
}

type indexData struct {
	BackendURL string
	Degraded   bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := indexData{
		BackendURL: s.backendURL,
		Degraded:   s.degraded.Load(),
	}
	if err := s.tmpl.Execute(w, data); err != nil {
		s.logger.LogError(r.Context(), "frontend_render", "", "Failed to render index", err, models.LogSeverityLow, nil)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.degraded.Load() {
		w.Write([]byte(`{"status":"degraded"}`))
		return
	}
	w.Write([]byte(`{"status":"healthy"}`))
}

// Start starts the frontend HTTP server
func (s *Server) Start() error {
	s.logger.LogInfo(context.Background(), logger.OpServerStart, "Starting frontend server", map[string]interface{}{
		"addr":        s.server.Addr,
		"backend_url": s.backendURL,
		"degraded":    s.degraded.Load(),
	})

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the frontend server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.LogInfo(ctx, logger.OpServerShutdown, "Shutting down frontend server", nil)
	return s.server.Shutdown(ctx)
}
