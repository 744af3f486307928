package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/beautyhome/studio-api/internal/content"
)

// BookingsPath is the document-store key of the booking collection.
const BookingsPath = "bookings/bookings.json"

// BlobStore is a key to bytes object store.
type BlobStore interface {
	// Get returns the object at path or an error satisfying IsNotFound.
	Get(ctx context.Context, path string) ([]byte, error)
	// Put replaces the object at path.
	Put(ctx context.Context, path string, data []byte) error
	// List returns the objects inside dir, most recently changed first.
	List(ctx context.Context, dir string) ([]ObjectInfo, error)
	// Writable reports whether Put and List can succeed.
	Writable() bool
	Ping(ctx context.Context) error
}

// SectionPath returns the document-store key of a section document.
func SectionPath(section content.Section) string {
	return fmt.Sprintf("content/%s.json", section)
}

// DocumentStore keeps section documents and the booking collection as JSON
// objects in a BlobStore.
//
// The booking collection is a single array rewritten on every change, so
// concurrent writers race and the last upload wins.
type DocumentStore struct {
	blobs  BlobStore
	logger *slog.Logger
}

// NewDocumentStore creates a DocumentStore over blobs.
func NewDocumentStore(blobs BlobStore, logger *slog.Logger) *DocumentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentStore{blobs: blobs, logger: logger}
}

// Writable reports whether the underlying blob store accepts uploads.
func (d *DocumentStore) Writable() bool {
	return d.blobs != nil && d.blobs.Writable()
}

// Ping checks that the blob store is reachable.
func (d *DocumentStore) Ping(ctx context.Context) error {
	if d.blobs == nil {
		return ErrStorageUnavailable
	}
	return d.blobs.Ping(ctx)
}

// ReadSection returns the stored document for section.
// Returns ErrNotFound if it has never been written and ErrMalformed if the
// stored bytes are not a JSON object.
func (d *DocumentStore) ReadSection(ctx context.Context, section content.Section) (content.Document, error) {
	data, err := d.read(ctx, SectionPath(section))
	if err != nil {
		return nil, err
	}
	doc, err := content.ValidateDocument(section, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, section, err)
	}
	return doc, nil
}

// WriteSection replaces the stored document for section.
func (d *DocumentStore) WriteSection(ctx context.Context, section content.Section, doc content.Document) error {
	if !d.Writable() {
		return ErrStorageUnavailable
	}
	if err := d.blobs.Put(ctx, SectionPath(section), doc); err != nil {
		return fmt.Errorf("failed to write section %s: %w", section, err)
	}
	return nil
}

// ReadBookings returns the booking collection, most recent first.
// A collection that has never been written is empty.
func (d *DocumentStore) ReadBookings(ctx context.Context) ([]Booking, error) {
	data, err := d.read(ctx, BookingsPath)
	if IsNotFound(err) {
		return []Booking{}, nil
	}
	if err != nil {
		return nil, err
	}

	var bookings []Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("%w: bookings: %v", ErrMalformed, err)
	}
	if bookings == nil {
		bookings = []Booking{}
	}
	return bookings, nil
}

// InsertBooking prepends b to the collection and rewrites it.
// Returns ErrDuplicate if the reference is already present.
func (d *DocumentStore) InsertBooking(ctx context.Context, b *Booking) error {
	if !d.Writable() {
		return ErrStorageUnavailable
	}

	// A failed read aborts the insert; rewriting from an empty list would
	// drop every existing booking.
	bookings, err := d.ReadBookings(ctx)
	if err != nil {
		return fmt.Errorf("failed to read bookings: %w", err)
	}
	for _, existing := range bookings {
		if existing.Reference == b.Reference {
			return ErrDuplicate
		}
	}

	next := make([]Booking, 0, len(bookings)+1)
	next = append(next, *b)
	next = append(next, bookings...)
	return d.writeBookings(ctx, next)
}

// UpdateStatus sets the status of the booking with the given reference.
// Returns ErrNotFound if no booking matches.
func (d *DocumentStore) UpdateStatus(ctx context.Context, reference string, status Status) error {
	n, err := d.updateWhere(ctx, status, func(b *Booking) bool {
		return b.Reference == reference
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatusBySession sets the status of every booking tied to an external
// payment session and returns how many matched.
func (d *DocumentStore) UpdateStatusBySession(ctx context.Context, sessionID string, status Status) (int64, error) {
	return d.updateWhere(ctx, status, func(b *Booking) bool {
		return b.StripeSessionID != nil && *b.StripeSessionID == sessionID
	})
}

// FindBySession returns the first booking tied to an external payment session.
func (d *DocumentStore) FindBySession(ctx context.Context, sessionID string) (*Booking, error) {
	bookings, err := d.ReadBookings(ctx)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if s := bookings[i].StripeSessionID; s != nil && *s == sessionID {
			return &bookings[i], nil
		}
	}
	return nil, ErrNotFound
}

// FindByReference returns the booking with the given reference.
func (d *DocumentStore) FindByReference(ctx context.Context, reference string) (*Booking, error) {
	bookings, err := d.ReadBookings(ctx)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].Reference == reference {
			return &bookings[i], nil
		}
	}
	return nil, ErrNotFound
}

func (d *DocumentStore) updateWhere(ctx context.Context, status Status, match func(*Booking) bool) (int64, error) {
	if !d.Writable() {
		return 0, ErrStorageUnavailable
	}

	bookings, err := d.ReadBookings(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read bookings: %w", err)
	}

	var n int64
	for i := range bookings {
		if match(&bookings[i]) {
			bookings[i].Status = status
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, d.writeBookings(ctx, bookings)
}

func (d *DocumentStore) writeBookings(ctx context.Context, bookings []Booking) error {
	data, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("failed to encode bookings: %w", err)
	}
	if err := d.blobs.Put(ctx, BookingsPath, data); err != nil {
		return fmt.Errorf("failed to write bookings: %w", err)
	}
	return nil
}

// read fetches key, resolving it to the newest matching object in the same
// directory when the exact key is absent. Objects uploaded with a random
// suffix (content/home-x1Y2.json) are found this way.
func (d *DocumentStore) read(ctx context.Context, key string) ([]byte, error) {
	if d.blobs == nil {
		return nil, ErrStorageUnavailable
	}

	data, err := d.blobs.Get(ctx, key)
	if err == nil || !IsNotFound(err) || !d.blobs.Writable() {
		return data, err
	}

	resolved, rerr := d.resolveLatest(ctx, key)
	if rerr != nil {
		d.logger.Debug("latest object resolution failed", "key", key, "error", rerr)
		return nil, err
	}
	if resolved == "" {
		return nil, err
	}

	d.logger.Debug("resolved object", "key", key, "resolved", resolved)
	return d.blobs.Get(ctx, resolved)
}

func (d *DocumentStore) resolveLatest(ctx context.Context, key string) (string, error) {
	dir := path.Dir(key)
	if dir == "." {
		dir = ""
	}
	ext := path.Ext(key)
	stem := strings.TrimSuffix(path.Base(key), ext)

	objects, err := d.blobs.List(ctx, dir)
	if err != nil {
		return "", err
	}
	for _, o := range objects {
		if o.IsDirectory || !strings.HasSuffix(o.Name, ext) {
			continue
		}
		name := strings.TrimSuffix(o.Name, ext)
		if name == stem || strings.HasPrefix(name, stem+"-") {
			return o.Path, nil
		}
	}
	return "", nil
}
