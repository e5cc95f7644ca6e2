package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// OpenAPIHandler serves the gateway's OpenAPI document. The document is a
// static asset shipped with the binary; it is read once and cached.
type OpenAPIHandler struct {
	path string

	once     sync.Once
	yamlData []byte
	jsonData []byte
	loadErr  error
}

// NewOpenAPIHandler creates a handler serving the spec at the given path.
func NewOpenAPIHandler(path string) *OpenAPIHandler {
	return &OpenAPIHandler{path: path}
}

// RegisterRoutes registers the OpenAPI routes.
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/api/openapi.json", h.ServeJSON).Methods("GET")
}

func (h *OpenAPIHandler) load() {
	h.once.Do(func() {
		data, err := os.ReadFile(h.path)
		if err != nil {
			h.loadErr = err
			return
		}
		h.yamlData = data

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			h.loadErr = err
			return
		}
		h.jsonData, h.loadErr = json.Marshal(doc)
	})
}

// ServeYAML serves the spec in YAML format.
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	h.load()
	if h.loadErr != nil {
		http.Error(w, "OpenAPI specification not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	_, _ = w.Write(h.yamlData)
}

// ServeJSON serves the spec converted to JSON.
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	h.load()
	if h.loadErr != nil {
		http.Error(w, "OpenAPI specification not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonData)
}
