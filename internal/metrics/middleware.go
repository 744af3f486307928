package metrics

import (
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
)

// referenceSegment matches booking references and numeric ids in raw paths.
var referenceSegment = regexp.MustCompile(`/([A-Z]+-\d{8}-[A-Z0-9]{4}|\d+)`)

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader captures the status code and writes it to the underlying ResponseWriter
func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

// Write ensures WriteHeader is called before writing body
func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// Middleware returns an HTTP middleware that records Prometheus metrics for each request.
// It tracks:
// - Request count by method, route, and status
// - Request duration (latency)
// - Panics are recorded as 500 status codes
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		startTime := time.Now()

		defer func() {
			duration := time.Since(startTime).Seconds()

			statusCode := recorder.statusCode
			if statusCode == 0 {
				statusCode = http.StatusInternalServerError
			}

			path := routePattern(r)

			statusStr := http.StatusText(statusCode)
			if statusStr == "" {
				statusStr = "UNKNOWN"
			}

			RecordRequest(r.Method, path, statusStr)
			RecordRequestDuration(r.Method, path, statusStr, duration)

			// Don't re-panic; the recoverer upstream has already had its chance.
			if err := recover(); err != nil {
				if !recorder.written {
					recorder.statusCode = http.StatusInternalServerError
					recorder.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(recorder, r)
	})
}

// routePattern prefers the matched chi route (e.g. "/content/{section}") and
// falls back to the normalized raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

// normalizePath replaces references and numeric ids with ":id" to bound label cardinality.
//
//	/admin/bookings/BHS-20260101-AB12 -> /admin/bookings/:id
func normalizePath(path string) string {
	return referenceSegment.ReplaceAllString(path, "/:id")
}
