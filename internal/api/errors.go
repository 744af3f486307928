package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/beautyhome/studio-api/internal/auth"
	"github.com/beautyhome/studio-api/internal/booking"
	"github.com/beautyhome/studio-api/internal/content"
	"github.com/beautyhome/studio-api/internal/middleware"
	"github.com/beautyhome/studio-api/internal/storage"
)

// Standard error codes for API responses.
const (
	// ErrCodeInvalidRequest indicates a malformed request body.
	ErrCodeInvalidRequest = "invalid_request"

	// ErrCodeSectionNotFound indicates a section name outside the fixed set.
	ErrCodeSectionNotFound = "section_not_found"

	// ErrCodeInvalidPayload indicates a content document of the wrong shape.
	ErrCodeInvalidPayload = "invalid_payload"

	// ErrCodeMissingFields indicates required fields were empty.
	ErrCodeMissingFields = "missing_fields"

	// ErrCodePackageNotFound indicates an unknown package id.
	ErrCodePackageNotFound = "package_not_found"

	// ErrCodeInvalidStatus indicates an unknown booking status.
	ErrCodeInvalidStatus = "invalid_status"

	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeInvalidCredentials indicates a failed login.
	ErrCodeInvalidCredentials = "invalid_credentials"

	// ErrCodeUnauthorized indicates a missing or invalid admin credential.
	ErrCodeUnauthorized = "unauthorized"

	// ErrCodeRecoveryNotConfigured indicates no recovery key hash is stored.
	ErrCodeRecoveryNotConfigured = "recovery_not_configured"

	// ErrCodeInvalidRecoveryKey indicates a recovery key mismatch.
	ErrCodeInvalidRecoveryKey = "invalid_recovery_key"

	// ErrCodeStorageUnavailable indicates no write-capable backend.
	ErrCodeStorageUnavailable = "storage_unavailable"

	// ErrCodePaymentsNotConfigured indicates no payment gateway key.
	ErrCodePaymentsNotConfigured = "payments_not_configured"

	// ErrCodeUpstreamFailed indicates the payment gateway lookup failed.
	ErrCodeUpstreamFailed = "upstream_verification_failed"

	// ErrCodePayloadTooLarge indicates the body exceeded the size limit.
	ErrCodePayloadTooLarge = "payload_too_large"

	// ErrCodeInternalError indicates a server error.
	ErrCodeInternalError = "internal_error"
)

// APIError is the standard error response format for JSON APIs.
type APIError struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Hint    string   `json:"hint,omitempty"`
	Details []string `json:"details,omitempty"`
}

// WriteError writes a JSON error response with the given status code, error code, and message.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeAPIError(w, status, APIError{Error: code, Message: message})
}

// WriteErrorWithHint writes a JSON error response with a hint for resolving the error.
func WriteErrorWithHint(w http.ResponseWriter, status int, code, message, hint string) {
	writeAPIError(w, status, APIError{Error: code, Message: message, Hint: hint})
}

func writeAPIError(w http.ResponseWriter, status int, resp APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // Response write errors are unrecoverable
	json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Response write errors are unrecoverable
	json.NewEncoder(w).Encode(v)
}

// writeDocument writes a stored document verbatim.
func writeDocument(w http.ResponseWriter, doc content.Document) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Response write errors are unrecoverable
	w.Write(doc)
}

// writeServiceError maps a domain error onto its HTTP status and envelope.
// Unrecognised errors are logged and reported as 500 with fallback as the message.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var missing *booking.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		writeAPIError(w, http.StatusBadRequest, APIError{
			Error:   ErrCodeMissingFields,
			Message: "Missing required fields",
			Details: missing.Fields,
		})
	case middleware.IsBodyTooLarge(err):
		WriteError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Request body too large")
	case errors.Is(err, content.ErrInvalidSection):
		WriteError(w, http.StatusNotFound, ErrCodeSectionNotFound, "Section not found")
	case errors.Is(err, content.ErrInvalidPayload):
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidPayload, err.Error())
	case errors.Is(err, booking.ErrInvalidPayType):
		WriteErrorWithHint(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid payType", "Use \"deposit\" or \"full\"")
	case errors.Is(err, booking.ErrPackageNotFound):
		WriteError(w, http.StatusNotFound, ErrCodePackageNotFound, "Package not found")
	case errors.Is(err, booking.ErrInvalidStatus):
		WriteErrorWithHint(w, http.StatusBadRequest, ErrCodeInvalidStatus, "Invalid status", "Use pending_payment, paid or cancelled")
	case errors.Is(err, storage.ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Booking not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, auth.ErrWeakPassword):
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, auth.ErrRecoveryNotConfigured):
		WriteError(w, http.StatusBadRequest, ErrCodeRecoveryNotConfigured, "Recovery is not configured")
	case errors.Is(err, auth.ErrInvalidRecoveryKey):
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidRecoveryKey, "Invalid recovery key")
	case errors.Is(err, storage.ErrStorageUnavailable):
		WriteErrorWithHint(w, http.StatusServiceUnavailable, ErrCodeStorageUnavailable, "Storage is not configured for writes", "Set STORAGE_ZONE and STORAGE_ACCESS_KEY")
	case errors.Is(err, booking.ErrPaymentsNotConfigured):
		WriteError(w, http.StatusServiceUnavailable, ErrCodePaymentsNotConfigured, "Payment verification is not configured")
	case errors.Is(err, booking.ErrUpstreamVerificationFailed):
		h.log(r).Error("payment verification failed", "error", err)
		WriteError(w, http.StatusBadGateway, ErrCodeUpstreamFailed, "Failed to verify session")
	default:
		h.log(r).Error(fallback, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, fallback)
	}
}
