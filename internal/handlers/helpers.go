package handlers

import (
	"encoding/json"
	"net/http"
)

// respondJSON sends a JSON response. The gateway relays most payloads
// verbatim, so unlike a typical API there is no success wrapper; the body
// is exactly what the caller expects.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError sends the uniform {"error": ...} envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// unreachableEnvelope is the single failure shape for all network-level
// proxy errors: what went wrong, and which target was attempted.
type unreachableEnvelope struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
	Target string `json:"target"`
}

// respondBackendUnreachable sends the 502 diagnostic envelope.
func respondBackendUnreachable(w http.ResponseWriter, detail, target string) {
	respondJSON(w, http.StatusBadGateway, unreachableEnvelope{
		Error:  "Backend unreachable",
		Detail: detail,
		Target: target,
	})
}
