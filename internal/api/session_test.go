package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beautyhome/studio-api/internal/auth"
	"github.com/beautyhome/studio-api/internal/content"
	"github.com/beautyhome/studio-api/internal/storage"
)

func TestLoginFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/auth/login", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", `{"username":"Susan","password":"`+auth.BootstrapPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.WithinDuration(t, time.Now().Add(auth.DefaultSessionTTL), cookie.Expires, time.Minute)

	rec = env.do(t, http.MethodGet, "/auth/login", "", withCookie(cookie))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/bookings", "", withCookie(cookie))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/auth/login", "", withAdminKey)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, body := range []string{
		`{"username":"susan","password":"wrong"}`,
		`{"username":"someone","password":"` + auth.BootstrapPassword + `"}`,
	} {
		rec := env.do(t, http.MethodPost, "/auth/login", body, func(r *http.Request) {
			r.Header.Set("User-Agent", body)
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid_credentials","message":"Invalid credentials"}`, rec.Body.String())
		assert.Nil(t, sessionCookie(rec))
	}
}

func TestLoginRateLimit(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var last int
	for range 6 {
		last = env.do(t, http.MethodPost, "/auth/login", `{"username":"susan","password":"x"}`).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRecoverFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.storage.PutObject(storage.SectionPath(content.Settings),
		[]byte(`{"admin":{"username":"owner","password":"legacy","recoveryKeyHash":"`+mustHash(t, "rk-123")+`"},"profile":{}}`), time.Now())

	rec := env.do(t, http.MethodPost, "/auth/recover", `{"recoveryKey":"rk-123","newPassword":"123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/recover", `{"recoveryKey":"nope","newPassword":"newpass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrCodeInvalidRecoveryKey, decode[APIError](t, rec).Error)

	rec = env.do(t, http.MethodPost, "/auth/recover", `{"recoveryKey":"rk-123","newPassword":"newpass"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, ok := env.storage.Object(storage.SectionPath(content.Settings))
	require.True(t, ok)
	admin := content.ReadAdmin(stored)
	assert.Nil(t, admin.Password)
	assert.NotEmpty(t, admin.PasswordHash)

	rec = env.do(t, http.MethodPost, "/auth/login", `{"username":"owner","password":"newpass"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/recover", `{"recoveryKey":"rk-123","newPassword":"another"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRecoverNotConfigured(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/recover", `{"recoveryKey":"rk","newPassword":"newpass"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeRecoveryNotConfigured, decode[APIError](t, rec).Error)
}
