package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marketarea/gateway/internal/backend"
	"go.uber.org/zap"
)

func TestHealthCheck_Basic(t *testing.T) {
	t.Parallel()

	h := NewHealthChecker(backend.New("http://127.0.0.1:1", zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %q", resp.Status)
	}
	if resp.Checks != nil {
		t.Errorf("Expected no checks in basic mode, got %v", resp.Checks)
	}
}

func TestHealthCheck_Extended(t *testing.T) {
	t.Parallel()

	t.Run("backend healthy", func(t *testing.T) {
		t.Parallel()

		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer stub.Close()

		h := NewHealthChecker(backend.New(stub.URL, zap.NewNop()))

		req := httptest.NewRequest(http.MethodGet, "/healthz?mode=extended", nil)
		w := httptest.NewRecorder()
		h.HealthCheck(w, req)

		var resp HealthResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if resp.Checks["backend"] != "healthy" {
			t.Errorf("Expected backend check 'healthy', got %q", resp.Checks["backend"])
		}
	})

	t.Run("backend unreachable stays 200", func(t *testing.T) {
		t.Parallel()

		h := NewHealthChecker(backend.New("http://127.0.0.1:1", zap.NewNop()))

		req := httptest.NewRequest(http.MethodGet, "/healthz?mode=extended", nil)
		w := httptest.NewRecorder()
		h.HealthCheck(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200 even with unreachable backend, got %d", w.Code)
		}
		var resp HealthResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if resp.Status != "healthy" {
			t.Errorf("Expected gateway status 'healthy', got %q", resp.Status)
		}
		if !strings.HasPrefix(resp.Checks["backend"], "unhealthy") {
			t.Errorf("Expected backend check to report unhealthy, got %q", resp.Checks["backend"])
		}
	})
}

func TestDebug_ReportsRoutingAndProbes(t *testing.T) {
	t.Parallel()

	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/api/industries":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer stub.Close()

	h := NewDebugHandler(backend.New(stub.URL, zap.NewNop()), "BACKEND_URL")

	req := httptest.NewRequest(http.MethodGet, "/debug", nil)
	w := httptest.NewRecorder()
	h.Debug(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp DebugResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if resp.Env.BackendURL != stub.URL {
		t.Errorf("Expected backend_url %q, got %q", stub.URL, resp.Env.BackendURL)
	}
	if resp.Env.AddressSource != "BACKEND_URL" {
		t.Errorf("Expected address_source 'BACKEND_URL', got %q", resp.Env.AddressSource)
	}
	if resp.Backend.Health.Status != "connected" {
		t.Errorf("Expected health probe 'connected', got %q", resp.Backend.Health.Status)
	}
	if resp.Backend.API.Status != "connected" {
		t.Errorf("Expected api probe 'connected', got %q", resp.Backend.API.Status)
	}
}

func TestDebug_UnreachableBackend(t *testing.T) {
	t.Parallel()

	h := NewDebugHandler(backend.New("http://127.0.0.1:1", zap.NewNop()), "default")

	req := httptest.NewRequest(http.MethodGet, "/debug", nil)
	w := httptest.NewRecorder()
	h.Debug(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp DebugResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if resp.Backend.Health.Status != "unreachable" {
		t.Errorf("Expected health probe 'unreachable', got %q", resp.Backend.Health.Status)
	}
	if resp.Backend.Health.Detail == "" {
		t.Error("Expected probe detail for unreachable backend")
	}
}
