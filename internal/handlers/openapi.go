package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultOpenAPIPath is where the server looks for the API description
const DefaultOpenAPIPath = "api/openapi/openapi.yaml"

// OpenAPIHandler serves the API description as YAML and as JSON
type OpenAPIHandler struct {
	yamlDoc []byte
	jsonDoc []byte
}

// NewOpenAPIHandler reads and parses the document once. A missing or invalid document
// is logged and both routes answer 404.
func NewOpenAPIHandler(path string, logger *zap.Logger) *OpenAPIHandler {
	h := &OpenAPIHandler{}
	yamlDoc, jsonDoc, err := loadOpenAPI(path)
	if err != nil {
		if logger != nil {
			logger.Warn("openapi_unavailable", zap.String("path", path), zap.Error(err))
		}
		return h
	}
	h.yamlDoc = yamlDoc
	h.jsonDoc = jsonDoc
	return h
}

func loadOpenAPI(path string) ([]byte, []byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from server configuration
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read openapi document: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse openapi document: %w", err)
	}
	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert openapi document: %w", err)
	}
	return data, jsonDoc, nil
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/openapi.yaml", h.ServeYAML).Methods(http.MethodGet)
	r.HandleFunc("/api/openapi.json", h.ServeJSON).Methods(http.MethodGet)
}

// ServeYAML serves the OpenAPI spec in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	h.serve(w, h.yamlDoc, "application/x-yaml")
}

// ServeJSON serves the OpenAPI spec in JSON format
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	h.serve(w, h.jsonDoc, "application/json")
}

func (h *OpenAPIHandler) serve(w http.ResponseWriter, doc []byte, contentType string) {
	if doc == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "OpenAPI specification not found")
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(doc)
}
