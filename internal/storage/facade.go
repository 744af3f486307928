package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/beautyhome/studio-api/internal/content"
	"github.com/beautyhome/studio-api/internal/metrics"
)

// Backend names the store bookings are written to.
type Backend string

const (
	BackendSQL      Backend = "sql"
	BackendDocument Backend = "document"
)

// Relational is the booking table contract. SQLiteStorage implements it.
type Relational interface {
	InsertBooking(ctx context.Context, b *Booking) error
	ListBookings(ctx context.Context, status *Status) ([]Booking, error)
	UpdateStatus(ctx context.Context, reference string, status Status) error
	UpdateStatusBySession(ctx context.Context, sessionID string, status Status) (int64, error)
	FindBySession(ctx context.Context, sessionID string) (*Booking, error)
	FindByReference(ctx context.Context, reference string) (*Booking, error)
	Ping(ctx context.Context) error
}

// Facade is the single entry point for section documents and bookings.
// The relational backend, when present, is chosen once at construction and
// is preferred for bookings; listings fall back to the document store when
// a SQL query fails.
type Facade struct {
	docs   *DocumentStore
	sql    Relational
	logger *slog.Logger
}

// NewFacade creates a Facade. sql may be nil to run on the document store only.
func NewFacade(docs *DocumentStore, sql Relational, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{docs: docs, sql: sql, logger: logger}
}

// Backend reports where bookings are written.
func (f *Facade) Backend() Backend {
	if f.sql != nil {
		return BackendSQL
	}
	return BackendDocument
}

// GetDocument returns the stored document for section, or its default
// scaffold when nothing usable is stored. It never fails for a known section.
func (f *Facade) GetDocument(ctx context.Context, section content.Section) content.Document {
	doc, err := f.StoredDocument(ctx, section)
	if err != nil {
		if !IsNotFound(err) && !errors.Is(err, ErrStorageUnavailable) {
			f.logger.Warn("serving default content", "section", section, "error", err)
			metrics.RecordStorageFallback("get_document", "default")
		}
		return content.Default(section)
	}
	return doc
}

// StoredDocument returns the document actually stored for section without
// substituting the default scaffold.
func (f *Facade) StoredDocument(ctx context.Context, section content.Section) (content.Document, error) {
	if f.docs == nil {
		return nil, ErrStorageUnavailable
	}
	return f.docs.ReadSection(ctx, section)
}

// PutDocument validates and stores doc as the complete new value of section.
func (f *Facade) PutDocument(ctx context.Context, name string, raw []byte) (content.Document, error) {
	section, err := content.ParseSection(name)
	if err != nil {
		return nil, err
	}
	doc, err := content.ValidateDocument(section, raw)
	if err != nil {
		return nil, err
	}
	if f.docs == nil || !f.docs.Writable() {
		return nil, ErrStorageUnavailable
	}
	if err := f.docs.WriteSection(ctx, section, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListBookings returns bookings newest first, optionally filtered by status.
// Read failures degrade to the document store and finally to an empty list.
func (f *Facade) ListBookings(ctx context.Context, status *Status) []Booking {
	if f.sql != nil {
		bookings, err := f.sql.ListBookings(ctx, status)
		if err == nil {
			return bookings
		}
		f.logger.Warn("relational listing failed, reading document store", "error", err)
		metrics.RecordStorageFallback("list_bookings", "document")
	}

	if f.docs == nil {
		return []Booking{}
	}
	bookings, err := f.docs.ReadBookings(ctx)
	if err != nil {
		f.logger.Warn("document listing failed, returning empty list", "error", err)
		metrics.RecordStorageFallback("list_bookings", "empty")
		return []Booking{}
	}
	return filterBookings(bookings, status)
}

// InsertBooking stores a new booking on the selected backend.
func (f *Facade) InsertBooking(ctx context.Context, b *Booking) error {
	var err error
	if f.sql != nil {
		err = f.sql.InsertBooking(ctx, b)
	} else if f.docs != nil {
		err = f.docs.InsertBooking(ctx, b)
	} else {
		err = ErrStorageUnavailable
	}
	if err != nil {
		return err
	}
	metrics.RecordBookingCreated(string(f.Backend()), b.Currency)
	return nil
}

// UpdateBookingStatus overwrites the status of one booking.
// Returns ErrNotFound when the reference matches nothing.
func (f *Facade) UpdateBookingStatus(ctx context.Context, reference string, status Status) error {
	if f.sql != nil {
		return f.sql.UpdateStatus(ctx, reference, status)
	}
	if f.docs == nil {
		return ErrStorageUnavailable
	}
	return f.docs.UpdateStatus(ctx, reference, status)
}

// UpdateStatusBySession sets status on the bookings tied to a payment session.
func (f *Facade) UpdateStatusBySession(ctx context.Context, sessionID string, status Status) (int64, error) {
	if f.sql != nil {
		return f.sql.UpdateStatusBySession(ctx, sessionID, status)
	}
	if f.docs == nil {
		return 0, ErrStorageUnavailable
	}
	return f.docs.UpdateStatusBySession(ctx, sessionID, status)
}

// FindBookingBySession looks up the booking tied to a payment session.
func (f *Facade) FindBookingBySession(ctx context.Context, sessionID string) (*Booking, error) {
	if f.sql != nil {
		return f.sql.FindBySession(ctx, sessionID)
	}
	if f.docs == nil {
		return nil, ErrStorageUnavailable
	}
	return f.docs.FindBySession(ctx, sessionID)
}

// FindBooking looks up a booking by reference.
func (f *Facade) FindBooking(ctx context.Context, reference string) (*Booking, error) {
	if f.sql != nil {
		return f.sql.FindByReference(ctx, reference)
	}
	if f.docs == nil {
		return nil, ErrStorageUnavailable
	}
	return f.docs.FindByReference(ctx, reference)
}

// Ping checks every configured backend.
func (f *Facade) Ping(ctx context.Context) error {
	var errs []error
	if f.sql != nil {
		if err := f.sql.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("relational: %w", err))
		}
	}
	if f.docs != nil {
		if err := f.docs.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("document: %w", err))
		}
	}
	return errors.Join(errs...)
}

func filterBookings(bookings []Booking, status *Status) []Booking {
	if status == nil {
		return bookings
	}
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status.Matches(*status) {
			out = append(out, b)
		}
	}
	return out
}
