package api

import (
	"encoding/json"
	"net/http"

	"github.com/beautyhome/studio-api/internal/auth"
)

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin exchanges admin credentials for a session cookie.
// POST /auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	token, expires, err := h.authn.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err, "Login failed")
		return
	}

	http.SetCookie(w, auth.SessionCookie(token, expires, h.secureCookies))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleSessionStatus reports whether the caller holds a valid session cookie.
// GET /auth/login
func (h *Handler) HandleSessionStatus(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.gate.Authenticate(r); ok && id.Method == auth.MethodSession {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized")
}

// HandleLogout clears the session cookie.
// POST /auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearedSessionCookie(h.secureCookies))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// RecoverRequest is the request body for POST /auth/recover
type RecoverRequest struct {
	RecoveryKey string `json:"recoveryKey"`
	NewPassword string `json:"newPassword"`
}

// HandleRecover resets the admin password with the recovery key.
// POST /auth/recover
func (h *Handler) HandleRecover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	if err := h.authn.Recover(r.Context(), req.RecoveryKey, req.NewPassword); err != nil {
		h.writeServiceError(w, r, err, "Failed to reset password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
