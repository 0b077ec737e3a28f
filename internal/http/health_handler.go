package http

import (
	"net/http"
)

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /health", http.HandlerFunc(h.handleHealth))
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}
