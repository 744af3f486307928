package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/beautyhome/studio-api/internal/metrics"
)

// AdminKeyHeader carries the shared admin secret.
const AdminKeyHeader = "X-Admin-Key"

// Gate admits a request that carries either a valid session cookie or the
// shared admin secret.
type Gate struct {
	sessions *SessionManager
	secret   string
}

// NewGate creates a Gate. An empty secret disables the shared-secret credential.
func NewGate(sessions *SessionManager, secret string) *Gate {
	return &Gate{sessions: sessions, secret: secret}
}

// Authenticate returns the identity r carries, if any.
func (g *Gate) Authenticate(r *http.Request) (Identity, bool) {
	if token := SessionToken(r); token != "" && g.sessions != nil {
		if claims, err := g.sessions.Parse(token); err == nil {
			return Identity{Username: claims.Subject, Method: MethodSession}, true
		}
	}

	if g.secret != "" {
		provided := r.Header.Get(AdminKeyHeader)
		if provided == "" {
			provided = r.URL.Query().Get("key")
		}
		if provided != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(g.secret)) == 1 {
			return Identity{Username: "admin", Method: MethodSecret}, true
		}
	}
	return Identity{}, false
}

// Middleware rejects requests without a credential with 401.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := g.Authenticate(r)
		if !ok {
			metrics.RecordAuthFailure("missing_credential")
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), id)))
	})
}

// writeJSONError writes the standard error envelope.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
