// Package bunny provides a client for bunny.net Edge Storage, used as the
// document-store backend for section content and the booking collection.
package bunny

import (
	"errors"
	"fmt"

	"github.com/beautyhome/studio-api/internal/storage"
)

// APIError represents a structured error from the Edge Storage API.
type APIError struct {
	StatusCode int    `json:"HttpCode"`
	Message    string `json:"Message"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("bunny: storage error (status %d): %s", e.StatusCode, e.Message)
}

// Sentinel errors for common API error cases.
var (
	ErrUnauthorized = errors.New("bunny: unauthorized (invalid access key)")
	ErrNotFound     = fmt.Errorf("bunny: object not found: %w", storage.ErrNotFound)
	ErrReadOnly     = fmt.Errorf("bunny: no access key configured: %w", storage.ErrStorageUnavailable)
)
