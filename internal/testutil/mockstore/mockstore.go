// Package mockstore provides configurable mock implementations of storage interfaces for testing.
//
// The mock types use function fields for each method, allowing tests to customize behavior
// as needed while providing sensible defaults for methods that aren't customized.
package mockstore

import (
	"context"

	"github.com/beautyhome/studio-api/internal/storage"
)

// MockRelational is a configurable mock implementation of storage.Relational.
// If a function field is nil, the method returns a sensible default value.
type MockRelational struct {
	InsertBookingFunc         func(ctx context.Context, b *storage.Booking) error
	ListBookingsFunc          func(ctx context.Context, status *storage.Status) ([]storage.Booking, error)
	UpdateStatusFunc          func(ctx context.Context, reference string, status storage.Status) error
	UpdateStatusBySessionFunc func(ctx context.Context, sessionID string, status storage.Status) (int64, error)
	FindBySessionFunc         func(ctx context.Context, sessionID string) (*storage.Booking, error)
	FindByReferenceFunc       func(ctx context.Context, reference string) (*storage.Booking, error)
	PingFunc                  func(ctx context.Context) error
}

// InsertBooking stores a booking.
func (m *MockRelational) InsertBooking(ctx context.Context, b *storage.Booking) error {
	if m.InsertBookingFunc != nil {
		return m.InsertBookingFunc(ctx, b)
	}
	return nil
}

// ListBookings lists bookings.
func (m *MockRelational) ListBookings(ctx context.Context, status *storage.Status) ([]storage.Booking, error) {
	if m.ListBookingsFunc != nil {
		return m.ListBookingsFunc(ctx, status)
	}
	return []storage.Booking{}, nil
}

// UpdateStatus updates one booking's status.
func (m *MockRelational) UpdateStatus(ctx context.Context, reference string, status storage.Status) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, reference, status)
	}
	return storage.ErrNotFound
}

// UpdateStatusBySession updates the bookings tied to a payment session.
func (m *MockRelational) UpdateStatusBySession(ctx context.Context, sessionID string, status storage.Status) (int64, error) {
	if m.UpdateStatusBySessionFunc != nil {
		return m.UpdateStatusBySessionFunc(ctx, sessionID, status)
	}
	return 0, nil
}

// FindBySession finds the booking tied to a payment session.
func (m *MockRelational) FindBySession(ctx context.Context, sessionID string) (*storage.Booking, error) {
	if m.FindBySessionFunc != nil {
		return m.FindBySessionFunc(ctx, sessionID)
	}
	return nil, storage.ErrNotFound
}

// FindByReference finds a booking by reference.
func (m *MockRelational) FindByReference(ctx context.Context, reference string) (*storage.Booking, error) {
	if m.FindByReferenceFunc != nil {
		return m.FindByReferenceFunc(ctx, reference)
	}
	return nil, storage.ErrNotFound
}

// Ping checks connectivity.
func (m *MockRelational) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
