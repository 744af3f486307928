package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(t *testing.T, now time.Time) *SessionManager {
	t.Helper()
	m, err := NewSessionManager([]byte("test-secret"), 0)
	require.NoError(t, err)
	m.SetClock(func() time.Time { return now })
	return m
}

func TestNewSessionManager(t *testing.T) {
	t.Parallel()

	_, err := NewSessionManager(nil, time.Minute)
	require.Error(t, err)

	m, err := NewSessionManager([]byte("k"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionTTL, m.TTL())
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestSessions(t, now)

	token, expires, err := m.Issue("susan")
	require.NoError(t, err)
	assert.Equal(t, now.Add(10*time.Minute), expires)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "susan", claims.Subject)
	assert.True(t, m.VerifySession(token))
}

func TestSessionExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestSessions(t, now)
	token, _, err := m.Issue("susan")
	require.NoError(t, err)

	m.SetClock(func() time.Time { return now.Add(9 * time.Minute) })
	assert.True(t, m.VerifySession(token))

	m.SetClock(func() time.Time { return now.Add(11 * time.Minute) })
	assert.False(t, m.VerifySession(token))
}

func TestVerifySessionRejects(t *testing.T) {
	t.Parallel()

	now := time.Now()
	m := newTestSessions(t, now)
	other, err := NewSessionManager([]byte("other-secret"), 0)
	require.NoError(t, err)
	foreign, _, err := other.Issue("susan")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "susan",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong key", foreign},
		{"alg none", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, m.VerifySession(tt.token))
		})
	}

	var nilManager *SessionManager
	assert.False(t, nilManager.VerifySession("x"))
}

func TestSessionCookie(t *testing.T) {
	t.Parallel()

	expires := time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC)
	c := SessionCookie("tok", expires, true)
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, SessionToken(r))
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "tok"})
	assert.Equal(t, "tok", SessionToken(r))

	cleared := ClearedSessionCookie(false)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
}
