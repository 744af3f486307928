package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beautyhome/studio-api/internal/content"
	"github.com/beautyhome/studio-api/internal/storage"
)

func TestHealthAndReady(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","backend":"document"}`, rec.Body.String())

	env.storage.SetFailure("", http.StatusServiceUnavailable)
	rec = env.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetContent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	t.Run("default scaffold", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/content/contact", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, string(content.Default(content.Contact)), rec.Body.String())
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("case insensitive section", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/content/HOME", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown section", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/content/blog", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, ErrCodeSectionNotFound, decode[APIError](t, rec).Error)
	})

	t.Run("storage outage serves default", func(t *testing.T) {
		env.storage.SetFailure(storage.SectionPath(content.About), http.StatusBadGateway)
		defer env.storage.ClearFailures()

		rec := env.do(t, http.MethodGet, "/content/about", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, string(content.Default(content.About)), rec.Body.String())
	})
}

func TestContentCORSPreflight(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodOptions, "/content/home", "", func(r *http.Request) {
		r.Header.Set("Origin", "https://studio.example")
		r.Header.Set("Access-Control-Request-Method", http.MethodPut)
	})
	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = env.do(t, http.MethodGet, "/content/home", "", func(r *http.Request) {
		r.Header.Set("Origin", "https://studio.example")
	})
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPutContent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	t.Run("requires admin", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/content/home", `{"hero":{}}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("full replace", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/content/home", `{"hero":{"title":"New"},"highlights":[]}`, withAdminKey)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"hero":{"title":"New"},"highlights":[]}`, rec.Body.String())

		rec = env.do(t, http.MethodPut, "/content/home", `{"hero":{"title":"Newer"}}`, withAdminKey)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/content/home", "")
		assert.JSONEq(t, `{"hero":{"title":"Newer"}}`, rec.Body.String())
	})

	t.Run("invalid payloads", func(t *testing.T) {
		for _, body := range []string{`[1,2]`, `"text"`, `not json`, `{"highlights":{}}`} {
			rec := env.do(t, http.MethodPut, "/content/home", body, withAdminKey)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.Equal(t, ErrCodeInvalidPayload, decode[APIError](t, rec).Error)
		}
	})

	t.Run("unknown section", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/content/blog", `{}`, withAdminKey)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPutContentWithoutWriteBackend(t *testing.T) {
	t.Parallel()

	h := NewHandler(storage.NewFacade(nil, nil, nil), nil, nil, newTestEnvGate(t))
	router := h.NewRouter()
	env := &testEnv{router: router}

	rec := env.do(t, http.MethodPut, "/content/home", `{}`, withAdminKey)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, ErrCodeStorageUnavailable, decode[APIError](t, rec).Error)
}

func TestSettingsRedaction(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.storage.PutObject(storage.SectionPath(content.Settings),
		[]byte(`{"admin":{"username":"owner","passwordHash":"$2a$10$x","recoveryKeyHash":"$2a$10$y"},"profile":{"name":"Studio"}}`), time.Now())

	rec := env.do(t, http.MethodGet, "/content/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"admin":{"username":"owner"},"profile":{"name":"Studio"}}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/content/settings", "", withAdminKey)
	assert.Contains(t, rec.Body.String(), "passwordHash")
}

func TestRateLimitedContent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var last int
	for range 31 {
		last = env.do(t, http.MethodGet, "/content/home", "").Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
