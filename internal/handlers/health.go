package handlers

import (
	"net/http"
	"time"

	"github.com/marketarea/gateway/internal/backend"
)

// HealthChecker handles gateway liveness checks.
type HealthChecker struct {
	backend *backend.Client
}

// NewHealthChecker creates a health checker.
func NewHealthChecker(client *backend.Client) *HealthChecker {
	return &HealthChecker{backend: client}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint. Basic mode reports that the
// gateway process is serving; extended mode also probes the backend. The
// gateway stays "healthy" with an unreachable backend — it can still
// serve 502 envelopes, which is its job.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)
		probe := h.backend.ProbeHealth(r.Context())
		if probe.Status == "connected" {
			checks["backend"] = "healthy"
		} else {
			checks["backend"] = "unhealthy: " + probe.Status
		}
		response.Checks = checks
	}

	respondJSON(w, http.StatusOK, response)
}
