package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/marketarea/gateway/internal/backend"
	logpkg "github.com/marketarea/gateway/internal/logger"
	"go.uber.org/zap"
)

const proxyPrefix = "/api/proxy/"

// ProxyHandler forwards arbitrary path-suffixed requests to the backend
// API. One handler serves every verb; the per-verb route handlers of the
// original surface collapse into this single dispatch.
type ProxyHandler struct {
	backend *backend.Client
	log     *zap.Logger
}

// NewProxyHandler creates the generic gateway proxy.
func NewProxyHandler(client *backend.Client, log *zap.Logger) *ProxyHandler {
	return &ProxyHandler{backend: client, log: log}
}

// RegisterRoutes registers the proxy catch-all on the given router.
func (h *ProxyHandler) RegisterRoutes(r *mux.Router) {
	r.PathPrefix(proxyPrefix).HandlerFunc(h.Proxy).
		Methods(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)
}

// Proxy relays one request to the backend. Policy, in order:
//   - target is base + /api/ + suffix + original query, suffix verbatim
//   - only content-type and authorization are forwarded inbound
//     (allow-list; cookies and host headers never leak upstream)
//   - GET/HEAD forward no body; other methods pass raw bytes through
//   - backend status, content-type, and body are relayed untouched
//   - any network-level failure is a 502 with the diagnostic envelope
func (h *ProxyHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	suffix := strings.TrimPrefix(r.URL.Path, proxyPrefix)

	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = r.Body
	}

	header := http.Header{}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	} else if body != nil {
		header.Set("Content-Type", "application/json")
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		header.Set("Authorization", auth)
	}

	resp, err := h.backend.Forward(r.Context(), r.Method, suffix, r.URL.RawQuery, body, header)
	if err != nil {
		target := h.backend.APIURL(suffix, r.URL.RawQuery)
		h.log.Error("backend_unreachable",
			zap.String("method", r.Method),
			zap.String("target", logpkg.SanitizePath(target)),
			zap.String("detail", logpkg.SanitizeError(err)),
		)
		respondBackendUnreachable(w, err.Error(), target)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.log.Warn("proxy_body_relay_interrupted",
			zap.String("method", r.Method),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.String("detail", logpkg.SanitizeError(err)),
		)
	}
}
