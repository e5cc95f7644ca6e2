package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/marketarea/gateway/internal/backend"
	logpkg "github.com/marketarea/gateway/internal/logger"
	"github.com/marketarea/gateway/internal/request"
	"github.com/marketarea/gateway/internal/token"
	"github.com/marketarea/gateway/internal/validation"
	"go.uber.org/zap"
)

const (
	// DefaultListLimit and DefaultListOffset are applied when the caller
	// omits pagination parameters. Values are passed through to the
	// backend without bounds checking; the backend owns validation.
	DefaultListLimit  = "20"
	DefaultListOffset = "0"
)

// SavedAnalysesHandler serves the saved-analysis resource routes. Each
// request re-derives a fresh backend credential from the session claims;
// the credential lives only for the one outbound call.
type SavedAnalysesHandler struct {
	backend *backend.Client
	signer  *token.Signer
	log     *zap.Logger
}

// NewSavedAnalysesHandler creates the saved-analyses handler.
func NewSavedAnalysesHandler(client *backend.Client, signer *token.Signer, log *zap.Logger) *SavedAnalysesHandler {
	return &SavedAnalysesHandler{backend: client, signer: signer, log: log}
}

// RegisterRoutes registers the resource routes. The router must already
// carry the session middleware; handlers assume claims in context.
func (h *SavedAnalysesHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.List).Methods("GET")
	r.HandleFunc("", h.Create).Methods("POST")
	r.HandleFunc("/{id}", h.Delete).Methods("DELETE")
}

// SaveAnalysisRequest is the payload for saving an analysis result. The
// gateway validates shape before forwarding; business rules stay with the
// backend.
type SaveAnalysisRequest struct {
	Address      string         `json:"address" validate:"required"`
	IndustryCode string         `json:"industry_code" validate:"required,industry_code"`
	IndustryName string         `json:"industry_name" validate:"required"`
	Lat          float64        `json:"lat" validate:"required,latitude"`
	Lng          float64        `json:"lng" validate:"required,longitude"`
	Radius       int            `json:"radius" validate:"required,gt=0"`
	ResultJSON   map[string]any `json:"result_json" validate:"required"`
	Memo         string         `json:"memo,omitempty"`
}

// List relays a paginated listing from the backend.
func (h *SavedAnalysesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := request.ClaimsFromContext(r)
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := r.URL.Query().Get("limit")
	if limit == "" {
		limit = DefaultListLimit
	}
	offset := r.URL.Query().Get("offset")
	if offset == "" {
		offset = DefaultListOffset
	}
	query := url.Values{"limit": {limit}, "offset": {offset}}

	h.relay(w, r, http.MethodGet, "saved-analyses", query.Encode(), nil, "")
}

// Create validates the payload and relays the save to the backend.
func (h *SavedAnalysesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := request.ClaimsFromContext(r)
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload SaveAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	payload.Memo = validation.SanitizeText(payload.Memo)

	if err := validation.Validate.Struct(payload); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			respondError(w, http.StatusInternalServerError, "Validation failed")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid analysis payload")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode payload")
		return
	}

	h.relay(w, r, http.MethodPost, "saved-analyses", "", bytes.NewReader(body), "application/json")
}

// Delete relays a deletion; a backend 204 comes back as an empty 204.
func (h *SavedAnalysesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := request.ClaimsFromContext(r)
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	h.relay(w, r, http.MethodDelete, "saved-analyses/"+id, "", nil, "")
}

// relay mints a fresh backend credential for the session in context,
// forwards the call, and relays the backend's status and body verbatim.
// A 204 is relayed with an empty body rather than re-wrapped.
func (h *SavedAnalysesHandler) relay(w http.ResponseWriter, r *http.Request, method, pathSuffix, rawQuery string, body io.Reader, contentType string) {
	claims := request.ClaimsFromContext(r)

	credential, err := h.signer.Sign(*claims)
	if err != nil {
		h.log.Error("credential_mint_failed",
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.String("detail", logpkg.SanitizeError(err)),
		)
		respondError(w, http.StatusInternalServerError, "Failed to mint backend credential")
		return
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+credential)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	resp, err := h.backend.Forward(r.Context(), method, pathSuffix, rawQuery, body, header)
	if err != nil {
		target := h.backend.APIURL(pathSuffix, rawQuery)
		h.log.Error("backend_unreachable",
			zap.String("method", method),
			zap.String("target", logpkg.SanitizePath(target)),
			zap.String("detail", logpkg.SanitizeError(err)),
		)
		respondBackendUnreachable(w, err.Error(), target)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respContentType := resp.Header.Get("Content-Type")
	if respContentType == "" {
		respContentType = "application/json"
	}
	w.Header().Set("Content-Type", respContentType)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.log.Warn("relay_body_interrupted",
			zap.String("method", method),
			zap.String("detail", logpkg.SanitizeError(err)),
		)
	}
}
