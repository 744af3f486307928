package booking

import (
	"errors"
	"strings"
)

var (
	// ErrMissingFields is returned when required checkout fields are empty.
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidPayType is returned when payType is neither deposit nor full.
	ErrInvalidPayType = errors.New("invalid pay type")

	// ErrPackageNotFound is returned when the package id is not in the catalog.
	ErrPackageNotFound = errors.New("package not found")

	// ErrInvalidStatus is returned for a status outside the booking state set.
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrPaymentsNotConfigured is returned by verification when no gateway is set.
	ErrPaymentsNotConfigured = errors.New("payment verification not configured")

	// ErrUpstreamVerificationFailed is returned when the gateway lookup fails.
	ErrUpstreamVerificationFailed = errors.New("upstream verification failed")

	// ErrReferenceExhausted is returned when no unused reference could be generated.
	ErrReferenceExhausted = errors.New("could not allocate a unique booking reference")
)

// MissingFieldsError names the required fields that were empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingFields
}
