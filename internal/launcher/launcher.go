package launcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"geospy/internal/logger"
	"geospy/internal/models"
)

// Mode selects which process(es) the entrypoint runs
type Mode string

const (
	ModeBackend     Mode = "backend"
	ModeFrontend    Mode = "frontend"
	ModeAll         Mode = "all"
	ModeDebug       Mode = "debug"
	ModeTestBackend Mode = "test-backend"
)

// ParseMode maps a command-line argument to a run mode. The historical
// django_frontend name is kept as an alias for frontend.
func ParseMode(arg string) (Mode, error) {
	switch arg {
	case "backend":
		return ModeBackend, nil
	case "frontend", "django_frontend":
		return ModeFrontend, nil
	case "all":
		return ModeAll, nil
	case "debug":
		return ModeDebug, nil
	case "test-backend":
		return ModeTestBackend, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected backend, frontend, django_frontend, all, debug or test-backend)", arg)
	}
}

// Poller checks backend health until it is reachable or attempts run out
type Poller struct {
	client   *http.Client
	url      string
	interval time.Duration
	attempts int
	logger   logger.Service
}

// NewPoller creates a health poller for the given health endpoint URL
func NewPoller(url string, interval time.Duration, attempts int, logger logger.Service) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if attempts <= 0 {
		attempts = 30
	}
	return &Poller{
		client:   &http.Client{Timeout: 5 * time.Second},
		url:      url,
		interval: interval,
		attempts: attempts,
		logger:   logger,
	}
}

// Wait polls the health endpoint once per interval. It returns nil as soon
// as the endpoint answers 200, and an error after exactly the configured
// number of failed attempts.
func (p *Poller) Wait(ctx context.Context) error {
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err := p.probe(ctx); err == nil {
			p.logger.LogSuccess(ctx, logger.OpHealthCheck, p.url, "Backend is healthy", map[string]interface{}{
				"attempt": attempt,
			})
			return nil
		} else {
			p.logger.LogInfo(ctx, logger.OpHealthCheck, "Backend not ready yet", map[string]interface{}{
				"attempt":      attempt,
				"max_attempts": p.attempts,
				"error":        err.Error(),
			})
		}

		if attempt == p.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}

	return fmt.Errorf("%w: backend not healthy after %d attempts", models.ErrFetchTimeout, p.attempts)
}

// probe performs a single health check request
func (p *Poller) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned HTTP %d", resp.StatusCode)
	}

	return nil
}
