package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ListLimit caps the number of bookings a relational listing returns.
const ListLimit = 200

// createdAtLayout is fixed-width so lexical order matches time order.
const createdAtLayout = "2006-01-02T15:04:05.000000Z"

const bookingColumns = `reference, package_id, package_name, currency, amount_paid, pay_type,
	appointment_date, time_window, country, city, customer_name, customer_email,
	customer_phone, instagram_handle, notes, status, payment_method, stripe_session_id, created_at`

// SQLiteStorage is the relational booking adapter backed by SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// Open opens the SQLite database at dsn (a file path or ":memory:") and
// ensures the schema exists.
func Open(ctx context.Context, dsn string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc.org/sqlite requires single connection for in-process file databases
	// to avoid "database is locked" errors
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if dsn != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			_ = db.Close() //nolint:errcheck
			return nil, fmt.Errorf("failed to set WAL mode: %w", err)
		}
	}

	if err := InitSchema(ctx, db); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// NewSQLiteStorage wraps an already-open database. The schema must exist.
func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// InsertBooking stores a new booking row.
// Returns ErrDuplicate if the reference already exists.
func (s *SQLiteStorage) InsertBooking(ctx context.Context, b *Booking) error {
	created := b.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Reference, b.PackageID, b.PackageName, b.Currency, b.AmountPaid, b.PayType,
		b.AppointmentDate, b.TimeWindow, b.Country, b.City, b.CustomerName, nullable(b.CustomerEmail),
		b.CustomerPhone, nullable(b.InstagramHandle), nullable(b.Notes), string(b.Status), b.PaymentMethod,
		nullable(b.StripeSessionID), created.UTC().Format(createdAtLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// ListBookings returns up to ListLimit bookings, newest first, optionally
// restricted to one status. The pending aliases match each other.
func (s *SQLiteStorage) ListBookings(ctx context.Context, status *Status) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	var args []any
	if status != nil {
		if status.Canonical() == StatusPendingPayment {
			query += ` WHERE status IN (?, ?)`
			args = append(args, string(StatusPendingPayment), string(StatusPendingLegacy))
		} else {
			query += ` WHERE status = ?`
			args = append(args, string(*status))
		}
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, ListLimit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	bookings := make([]Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

// UpdateStatus sets the status of the booking with the given reference.
// Returns ErrNotFound if no row matches.
func (s *SQLiteStorage) UpdateStatus(ctx context.Context, reference string, status Status) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE bookings SET status = ? WHERE reference = ?",
		string(status), reference,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatusBySession sets the status of every booking tied to an
// external payment session and returns how many rows matched.
func (s *SQLiteStorage) UpdateStatusBySession(ctx context.Context, sessionID string, status Status) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE bookings SET status = ? WHERE stripe_session_id = ?",
		string(status), sessionID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update booking status: %w", err)
	}
	return result.RowsAffected()
}

// FindBySession returns the booking tied to an external payment session.
func (s *SQLiteStorage) FindBySession(ctx context.Context, sessionID string) (*Booking, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE stripe_session_id = ? LIMIT 1`, sessionID)
	return scanOne(row)
}

// FindByReference returns the booking with the given reference.
func (s *SQLiteStorage) FindByReference(ctx context.Context, reference string) (*Booking, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE reference = ?`, reference)
	return scanOne(row)
}

// Ping verifies database connectivity with a lightweight query.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("database ping returned unexpected result: %d", result)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*Booking, error) {
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func scanBooking(sc scanner) (*Booking, error) {
	var (
		b                             Booking
		status, created               string
		email, handle, notes, session sql.NullString
	)
	err := sc.Scan(&b.Reference, &b.PackageID, &b.PackageName, &b.Currency, &b.AmountPaid, &b.PayType,
		&b.AppointmentDate, &b.TimeWindow, &b.Country, &b.City, &b.CustomerName, &email,
		&b.CustomerPhone, &handle, &notes, &status, &b.PaymentMethod, &session, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan booking row: %w", err)
	}

	b.Status = Status(status)
	b.CustomerEmail = stringPtr(email)
	b.InstagramHandle = stringPtr(handle)
	b.Notes = stringPtr(notes)
	b.StripeSessionID = stringPtr(session)
	if t, err := time.Parse(createdAtLayout, created); err == nil {
		b.CreatedAt = t
	} else if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		b.CreatedAt = t
	}
	return &b, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// isUniqueViolation reports whether err is the extended UNIQUE constraint code.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
