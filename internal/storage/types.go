package storage

import (
	"strings"
	"time"
)

// Status is the payment state of a booking.
type Status string

// Booking statuses. StatusPendingLegacy is accepted on input and compares
// equal to StatusPendingPayment.
const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusCancelled      Status = "cancelled"
	StatusPendingLegacy  Status = "pending"
)

// PaymentMethodBankTransfer is recorded for bookings created by manual checkout.
const PaymentMethodBankTransfer = "bank_transfer"

// ParseStatus returns the status for s, or false if s is not a known status.
// The legacy "pending" value is accepted as is.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.TrimSpace(strings.ToLower(s))); st {
	case StatusPendingPayment, StatusPaid, StatusCancelled, StatusPendingLegacy:
		return st, true
	default:
		return "", false
	}
}

// Canonical folds the legacy pending alias into StatusPendingPayment.
func (s Status) Canonical() Status {
	if s == StatusPendingLegacy {
		return StatusPendingPayment
	}
	return s
}

// Matches reports whether s and other denote the same status.
func (s Status) Matches(other Status) bool {
	return s.Canonical() == other.Canonical()
}

// Booking is one customer appointment request. JSON field names match the
// persisted document-store layout and the relational column names.
type Booking struct {
	Reference       string    `json:"reference"`
	PackageID       string    `json:"package_id"`
	PackageName     string    `json:"package_name"`
	Currency        string    `json:"currency"`
	AmountPaid      int64     `json:"amount_paid"`
	PayType         string    `json:"pay_type"`
	AppointmentDate string    `json:"appointment_date"`
	TimeWindow      string    `json:"time_window"`
	Country         string    `json:"country"`
	City            string    `json:"city"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	CustomerEmail   *string   `json:"customer_email"`
	InstagramHandle *string   `json:"instagram_handle"`
	Notes           *string   `json:"notes"`
	Status          Status    `json:"status"`
	PaymentMethod   string    `json:"payment_method"`
	StripeSessionID *string   `json:"stripe_session_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// ObjectInfo describes one object in a blob store listing.
type ObjectInfo struct {
	Path        string
	Name        string
	Size        int64
	LastChanged time.Time
	IsDirectory bool
}
