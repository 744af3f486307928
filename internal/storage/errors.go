package storage

import "errors"

var (
	// ErrNotFound is returned when a stored object or booking does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicate is returned when a booking reference already exists.
	ErrDuplicate = errors.New("resource already exists")

	// ErrStorageUnavailable is returned when no write-capable backend is configured.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrMalformed is returned when a stored object cannot be decoded.
	ErrMalformed = errors.New("stored object is malformed")
)

// IsNotFound reports whether err means the object or booking does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
