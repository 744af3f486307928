package middleware

import (
	"errors"
	"net/http"
)

// DefaultMaxBodySize bounds content documents and checkout submissions.
const DefaultMaxBodySize = 1 << 20

// MaxBodySize limits request bodies to maxBytes. Reads past the limit fail
// with *http.MaxBytesError; see IsBodyTooLarge.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// IsBodyTooLarge reports whether err came from reading past the body limit.
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
