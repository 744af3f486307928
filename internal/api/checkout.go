package api

import (
	"encoding/json"
	"net/http"

	"github.com/beautyhome/studio-api/internal/booking"
	"github.com/beautyhome/studio-api/internal/middleware"
)

// HandleListPackages returns the bookable packages.
// GET /checkout/packages
func (h *Handler) HandleListPackages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"packages": h.bookings.Packages(r.Context())})
}

// HandleManualCheckout records a bank-transfer booking.
// POST /checkout/manual
// Body: booking.Input
func (h *Handler) HandleManualCheckout(w http.ResponseWriter, r *http.Request) {
	var in booking.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		if middleware.IsBodyTooLarge(err) {
			h.writeServiceError(w, r, err, "")
			return
		}
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	b, err := h.bookings.CreateBooking(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to create booking")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reference": b.Reference})
}

// HandleVerifyCheckout confirms an online card payment.
// GET /checkout/verify?session_id=...
func (h *Handler) HandleVerifyCheckout(w http.ResponseWriter, r *http.Request) {
	result, err := h.bookings.VerifyExternalPayment(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to verify session")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
