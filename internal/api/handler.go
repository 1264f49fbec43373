// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/braillepath/backend/internal/engine"
	"github.com/braillepath/backend/internal/store"
	"github.com/braillepath/backend/internal/tutorial"
)

// Handler holds all dependencies needed by HTTP handlers.
// Instead of relying on package-level globals, every handler method
// receives its dependencies through this struct.
type Handler struct {
	store    store.Repository
	engine   *engine.Service
	tutorial *tutorial.Store
	logger   *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(s store.Repository, e *engine.Service, t *tutorial.Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:    s,
		engine:   e,
		tutorial: t,
		logger:   logger,
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v. Writes a 400 and returns
// false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

// handleStoreError checks for common store errors and writes the appropriate
// HTTP response. Returns true if an error was handled (caller should return).
func (h *Handler) handleStoreError(w http.ResponseWriter, err error, entity string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, entity+" not found", http.StatusNotFound)
		return true
	}
	if errors.Is(err, store.ErrUnavailable) {
		h.logger.Error("storage unavailable", "error", err, "entity", entity)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return true
	}
	h.logger.Error("store error", "error", err, "entity", entity)
	http.Error(w, "internal error", http.StatusInternalServerError)
	return true
}
