package handler

import (
	"log/slog"
	"net/http"

	"sigs.k8s.io/yaml"

	"github.com/automarket/automarket/internal/api/middleware"
	"github.com/automarket/automarket/internal/api/response"
)

// OpenAPIHandler serves the OpenAPI document as JSON.
type OpenAPIHandler struct {
	doc []byte
	err error
}

// NewOpenAPIHandler converts the YAML document once. A conversion error is
// reported on every request rather than at startup.
func NewOpenAPIHandler(yamlDoc []byte) *OpenAPIHandler {
	doc, err := yaml.YAMLToJSON(yamlDoc)
	if err != nil {
		slog.Error("failed to convert OpenAPI document to JSON", "error", err)
	}
	return &OpenAPIHandler{doc: doc, err: err}
}

// ServeHTTP writes the converted document.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.err != nil {
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to convert OpenAPI document", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.doc); err != nil {
		slog.Error("failed to write OpenAPI response", "error", err)
	}
}
