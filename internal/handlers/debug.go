package handlers

import (
	"net/http"

	"github.com/marketarea/gateway/internal/backend"
)

// DebugHandler reports the resolved backend routing and live connectivity
// probes. Intended for operators diagnosing split-brain routing or a
// misconfigured backend address.
type DebugHandler struct {
	backend       *backend.Client
	addressSource string
}

// NewDebugHandler creates the diagnostics handler.
func NewDebugHandler(client *backend.Client, addressSource string) *DebugHandler {
	return &DebugHandler{backend: client, addressSource: addressSource}
}

// DebugResponse is the diagnostics report.
type DebugResponse struct {
	Env struct {
		BackendURL    string `json:"backend_url"`
		AddressSource string `json:"address_source"`
	} `json:"env"`
	Backend struct {
		Health backend.ProbeResult `json:"health"`
		API    backend.ProbeResult `json:"api"`
	} `json:"backend"`
}

// Debug probes the backend liveness and API endpoints, each bounded at
// the diagnostic timeout.
func (h *DebugHandler) Debug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var resp DebugResponse
	resp.Env.BackendURL = h.backend.BaseURL()
	resp.Env.AddressSource = h.addressSource
	resp.Backend.Health = h.backend.ProbeHealth(ctx)
	resp.Backend.API = h.backend.ProbeAPI(ctx)

	respondJSON(w, http.StatusOK, resp)
}
