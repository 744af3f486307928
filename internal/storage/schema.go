// Package storage persists section documents and booking records. It holds
// the document-store adapter, the relational adapter and the Facade that
// chooses between them.
package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates the bookings table and its indexes.
// This is idempotent - safe to call multiple times.
func InitSchema(ctx context.Context, db *sql.DB) error {
	ddlStatements := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reference TEXT NOT NULL UNIQUE,
			package_id TEXT NOT NULL,
			package_name TEXT NOT NULL,
			currency TEXT NOT NULL,
			amount_paid INTEGER NOT NULL CHECK (amount_paid >= 0),
			pay_type TEXT NOT NULL,
			appointment_date TEXT NOT NULL,
			time_window TEXT NOT NULL,
			country TEXT NOT NULL,
			city TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_email TEXT,
			customer_phone TEXT NOT NULL,
			instagram_handle TEXT,
			notes TEXT,
			status TEXT NOT NULL,
			payment_method TEXT NOT NULL DEFAULT 'bank_transfer',
			stripe_session_id TEXT,
			created_at TEXT NOT NULL
		)`,

		// Listing query: filter by status, newest first
		`CREATE INDEX IF NOT EXISTS idx_bookings_status_created ON bookings(status, created_at)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_created ON bookings(created_at)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_stripe_session ON bookings(stripe_session_id)`,
	}

	for _, stmt := range ddlStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}
