// Package auth guards the admin surface: short-lived signed session tokens,
// the shared admin secret, password login and recovery-key password reset.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 10 * time.Minute

const issuer = "studio-api"

// Claims are the signed contents of a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a SessionManager. A non-positive ttl uses DefaultSessionTTL.
func NewSessionManager(secret []byte, ttl time.Duration) (*SessionManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: session secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{secret: secret, ttl: ttl, now: time.Now}, nil
}

// RandomSecret returns a 32-byte key for deployments without a configured one.
// Sessions signed with it do not survive a restart.
func RandomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("auth: generate session secret: %w", err)
	}
	return b, nil
}

// SetClock replaces the time source used for issuing and verifying.
func (m *SessionManager) SetClock(now func() time.Time) {
	m.now = now
}

// TTL returns the session lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for username that expires after the session TTL.
func (m *SessionManager) Issue(username string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign session: %w", err)
	}
	return token, expires, nil
}

// Parse verifies the signature and expiry of token and returns its claims.
func (m *SessionManager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithTimeFunc(m.now),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// VerifySession reports whether token is a valid, unexpired session.
// It never fails; an empty or malformed token is simply invalid.
func (m *SessionManager) VerifySession(token string) bool {
	if m == nil || token == "" {
		return false
	}
	_, err := m.Parse(token)
	return err == nil
}
