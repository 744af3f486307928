package bunny

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// LoggingTransport wraps an http.RoundTripper and logs every storage call at
// debug level. The AccessKey header is redacted and bodies are not logged,
// since booking collections carry customer contact details.
type LoggingTransport struct {
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// RoundTrip implements http.RoundTripper interface
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	accessKey := req.Header.Get("AccessKey")
	t.Logger.Debug("storage request",
		"method", req.Method,
		"url", req.URL.String(),
		"access_key", redactSensitiveData(accessKey),
		"content_length", req.ContentLength,
	)

	resp, err := t.transport().RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.Logger.Error("storage request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	t.Logger.Debug("storage response",
		"method", req.Method,
		"url", req.URL.String(),
		"status_code", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"content_type", strings.TrimSpace(resp.Header.Get("Content-Type")),
	)

	return resp, nil
}

// transport returns the underlying transport or DefaultTransport if nil
func (t *LoggingTransport) transport() http.RoundTripper {
	if t.Transport != nil {
		return t.Transport
	}
	return http.DefaultTransport
}

// redactSensitiveData redacts keys showing only first 4 and last 4 chars.
// Keys with fewer than 12 characters are completely redacted with "****".
func redactSensitiveData(key string) string {
	if key == "" {
		return ""
	}
	if len(key) < 12 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
