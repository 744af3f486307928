package api

import (
	"context"
	"net/http"
	"time"
)

// HandleHealth reports liveness.
// GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady pings every configured backend.
// GET /ready
// Returns 200 when all are reachable, 503 otherwise
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	backend := string(h.store.Backend())
	if err := h.store.Ping(ctx); err != nil {
		h.log(r).Warn("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"backend": backend,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": backend,
	})
}
