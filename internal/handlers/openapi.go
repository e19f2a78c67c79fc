package handlers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// OpenAPIHandler serves the embedded OpenAPI document as YAML or JSON
type OpenAPIHandler struct {
	once     sync.Once
	jsonDoc  []byte
	jsonErr  error
	yamlData []byte
}

// NewOpenAPIHandler creates a handler for the embedded document
func NewOpenAPIHandler() *OpenAPIHandler {
	return &OpenAPIHandler{yamlData: openAPIYAML}
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/api/v1/openapi.json", h.ServeJSON).Methods("GET")
}

// ServeYAML serves the OpenAPI spec in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	if _, err := w.Write(h.yamlData); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// ServeJSON serves the OpenAPI spec converted to JSON. The conversion runs once.
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.jsonDoc, h.jsonErr = yamlToJSON(h.yamlData)
	})
	if h.jsonErr != nil {
		respondError(w, r, http.StatusInternalServerError, "Internal Server Error", "Failed to parse OpenAPI specification", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(h.jsonDoc); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI YAML: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI JSON: %w", err)
	}
	return out, nil
}
