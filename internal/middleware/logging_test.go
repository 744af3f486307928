package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDebugLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func TestHTTPLogging_DebugMode(t *testing.T) {
	t.Parallel()

	logger, buf := newDebugLogger(slog.LevelDebug)
	handler := HTTPLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"reference":"BHS-20260301-AB12"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/checkout/manual?src=web", strings.NewReader(`{"name":"Ada"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	out := buf.String()
	assert.Contains(t, out, `"msg":"HTTP Request"`)
	assert.Contains(t, out, `"msg":"HTTP Response"`)
	assert.Contains(t, out, "/checkout/manual")
	assert.Contains(t, out, "src=web")
	assert.Contains(t, out, `"status_code":201`)
	assert.Contains(t, out, "BHS-20260301-AB12")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHTTPLogging_InfoMode_NoLogs(t *testing.T) {
	t.Parallel()

	logger, buf := newDebugLogger(slog.LevelInfo)
	handler := HTTPLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Zero(t, buf.Len())
}

func TestHTTPLogging_MasksCredentials(t *testing.T) {
	t.Parallel()

	logger, buf := newDebugLogger(slog.LevelDebug)
	handler := HTTPLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Set-Cookie", "studio_admin_session=signed.jwt.value")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/login?key=admin-pass", strings.NewReader(`{"username":"susan","password":"ChristisKing8"}`))
	req.Header.Set("X-Admin-Key", "admin-pass")
	req.Header.Set("Cookie", "studio_admin_session=old")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.NotContains(t, out, "ChristisKing8")
	assert.NotContains(t, out, "admin-pass")
	assert.NotContains(t, out, "signed.jwt.value")
	assert.NotContains(t, out, "studio_admin_session=old")
	assert.Contains(t, out, "susan")
}

func TestHTTPLogging_IncludesRequestID(t *testing.T) {
	t.Parallel()

	logger, buf := newDebugLogger(slog.LevelDebug)
	handler := RequestID(HTTPLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}

func TestHTTPLogging_BinaryBody(t *testing.T) {
	t.Parallel()

	logger, buf := newDebugLogger(slog.LevelDebug)
	handler := HTTPLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/content/home", bytes.NewReader([]byte{0xff, 0xfe, 0xfd})))

	assert.Contains(t, buf.String(), "[BINARY: 3 bytes]")
}

func TestHTTPLogging_RequestBodyRestored(t *testing.T) {
	t.Parallel()

	logger, _ := newDebugLogger(slog.LevelDebug)
	var got string
	handler := HTTPLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/content/home", strings.NewReader(`{"hero":{}}`)))

	assert.Equal(t, `{"hero":{}}`, got)
}
