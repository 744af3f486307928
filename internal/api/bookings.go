package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/beautyhome/studio-api/internal/auth"
	"github.com/beautyhome/studio-api/internal/logging"
	"github.com/beautyhome/studio-api/internal/storage"
)

// HandleListBookings returns up to the newest 200 bookings.
// GET /admin/bookings?status=paid
func (h *Handler) HandleListBookings(w http.ResponseWriter, r *http.Request) {
	var filter *storage.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		st, ok := storage.ParseStatus(raw)
		if !ok {
			WriteErrorWithHint(w, http.StatusBadRequest, ErrCodeInvalidStatus, "Invalid status", "Use pending_payment, paid or cancelled")
			return
		}
		filter = &st
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": h.store.ListBookings(r.Context(), filter),
	})
}

// HandleGetBooking returns one booking.
// GET /admin/bookings/{reference}
func (h *Handler) HandleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.FindBooking(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to load booking")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// SetStatusRequest is the request body for PATCH /admin/bookings.
// Reference is ignored when the path names the booking.
type SetStatusRequest struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// HandleSetStatus overwrites a booking's status.
// PATCH /admin/bookings
// Body: {"reference": "BHS-...", "status": "pending_payment|paid|cancelled"}
// PATCH /admin/bookings/{reference}
// Body: {"status": "pending_payment|paid|cancelled"}
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	reference := chi.URLParam(r, "reference")
	if reference == "" {
		reference = strings.TrimSpace(req.Reference)
	}
	st, err := h.bookings.SetStatus(r.Context(), reference, req.Status)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to update booking")
		return
	}

	id, _ := auth.AdminFromContext(r.Context())
	h.log(r).Info("booking status set by admin", "reference", reference, "status", st, "admin", id.Username)
	writeJSON(w, http.StatusOK, map[string]string{"reference": reference, "status": string(st)})
}

// HandleWhoami returns the authenticated identity.
// GET /admin/whoami
func (h *Handler) HandleWhoami(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.AdminFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"username": id.Username,
		"method":   string(id.Method),
	})
}

// SetLogLevelRequest is the request body for POST /admin/loglevel
type SetLogLevelRequest struct {
	Level string `json:"level"`
}

// HandleSetLogLevel changes runtime log level
// POST /admin/loglevel
// Body: {"level": "debug|info|warn|error"}
func (h *Handler) HandleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req SetLogLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	level, err := logging.ParseLevel(req.Level)
	if err != nil || strings.TrimSpace(req.Level) == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid level (must be: debug, info, warn, error)")
		return
	}

	h.logLevel.Set(level)
	h.log(r).Info("log level changed", "new_level", level.String())
	writeJSON(w, http.StatusOK, map[string]string{"level": strings.ToLower(level.String())})
}
