package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"mca-api/pkg/logger"
)

// HealthCheck probes one backing dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler handles health check requests
type HealthHandler struct {
	version string
	checks  map[string]HealthCheck
	timeout time.Duration
	logger  *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		version: version,
		checks:  make(map[string]HealthCheck),
		timeout: 2 * time.Second,
		logger:  log,
	}
}

// AddCheck registers a dependency probe under name
func (h *HealthHandler) AddCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type checkResult struct {
	name string
	err  error
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	p := pool.NewWithResults[checkResult]()
	for _, name := range names {
		check := h.checks[name]
		p.Go(func() checkResult {
			return checkResult{name: name, err: check(ctx)}
		})
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Service:   "mca-api",
		Checks:    make(map[string]string, len(names)),
	}

	status := http.StatusOK
	for _, res := range p.Wait() {
		if res.err != nil {
			h.logger.WithError(res.err).WithField("check", res.name).Warn("Health check failed")
			response.Checks[res.name] = "unhealthy"
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[res.name] = "ok"
	}

	respondJSON(w, status, response)
}
