// Package booking creates bookings from checkout submissions and moves them
// through their payment states.
package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/beautyhome/studio-api/internal/content"
	"github.com/beautyhome/studio-api/internal/metrics"
	"github.com/beautyhome/studio-api/internal/payments"
	"github.com/beautyhome/studio-api/internal/storage"
)

// Pay types accepted at checkout.
const (
	PayTypeDeposit = "deposit"
	PayTypeFull    = "full"
)

const (
	maxReferenceAttempts = 5
	notifyTimeout        = 15 * time.Second
)

// Store is the persistence the booking lifecycle needs. storage.Facade implements it.
type Store interface {
	StoredDocument(ctx context.Context, section content.Section) (content.Document, error)
	InsertBooking(ctx context.Context, b *storage.Booking) error
	UpdateBookingStatus(ctx context.Context, reference string, status storage.Status) error
	UpdateStatusBySession(ctx context.Context, sessionID string, status storage.Status) (int64, error)
	FindBookingBySession(ctx context.Context, sessionID string) (*storage.Booking, error)
}

// Notifier is told about every new booking.
type Notifier interface {
	NotifyBooking(ctx context.Context, b storage.Booking) error
}

// SessionLookup reads checkout sessions from the card payment gateway.
type SessionLookup interface {
	CheckoutSession(ctx context.Context, sessionID string) (*payments.Session, error)
}

// Input is a checkout submission.
type Input struct {
	PackageID       string `json:"packageId" validate:"required"`
	PayType         string `json:"payType" validate:"required"`
	AppointmentDate string `json:"appointmentDate" validate:"required"`
	TimeWindow      string `json:"timeWindow" validate:"required"`
	Country         string `json:"country" validate:"required"`
	City            string `json:"city" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Phone           string `json:"phone" validate:"required"`
	Email           string `json:"email"`
	InstagramHandle string `json:"instagramHandle"`
	Notes           string `json:"notes"`
}

// Verification is the outcome of checking a payment session.
type Verification struct {
	// Status is "paid" or the gateway's raw payment_status.
	Status    string           `json:"status"`
	Booking   *storage.Booking `json:"booking"`
	Reference *string          `json:"reference"`
}

// Service is the booking lifecycle manager.
type Service struct {
	store    Store
	notifier Notifier
	payments SessionLookup
	catalog  []content.Package
	prefix   string
	now      func() time.Time
	random   io.Reader
	logger   *slog.Logger
	validate *validator.Validate

	inflight sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the new-booking notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithPayments sets the gateway used to verify online payments.
func WithPayments(p SessionLookup) Option {
	return func(s *Service) { s.payments = p }
}

// WithCatalog replaces the built-in fallback package catalog.
func WithCatalog(pkgs []content.Package) Option {
	return func(s *Service) {
		if len(pkgs) > 0 {
			s.catalog = pkgs
		}
	}
}

// WithPrefix sets the booking reference prefix.
func WithPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			s.prefix = strings.ToUpper(prefix)
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRandom sets the entropy source for reference suffixes.
func WithRandom(r io.Reader) Option {
	return func(s *Service) { s.random = r }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a booking Service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		catalog:  content.BuiltinPackages(),
		prefix:   DefaultPrefix,
		now:      time.Now,
		logger:   slog.Default(),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Packages returns the bookable catalog: the stored packages section when it
// holds usable packages, else the configured fallback catalog.
func (s *Service) Packages(ctx context.Context) []content.Package {
	doc, err := s.store.StoredDocument(ctx, content.Packages)
	if err == nil {
		if pkgs, ok := content.PackagesFromDocument(doc); ok {
			return pkgs
		}
	} else if !storage.IsNotFound(err) {
		s.logger.Debug("using fallback package catalog", "error", err)
	}
	return s.catalog
}

// CreateBooking validates in, prices it against the catalog and stores a
// pending_payment booking. The owner notification runs in the background and
// cannot fail the booking.
func (s *Service) CreateBooking(ctx context.Context, in Input) (*storage.Booking, error) {
	in = trimInput(in)
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return nil, &MissingFieldsError{Fields: fields}
		}
		return nil, err
	}

	payType := strings.ToLower(in.PayType)
	if payType != PayTypeDeposit && payType != PayTypeFull {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPayType, in.PayType)
	}

	pkg, ok := content.FindPackage(s.Packages(ctx), in.PackageID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, in.PackageID)
	}

	major := pkg.Price
	if payType == PayTypeDeposit {
		major = pkg.Deposit
	}
	currency := pkg.Currency
	if currency == "" {
		currency = content.DefaultCurrency
	}

	now := s.now()
	b := &storage.Booking{
		PackageID:       pkg.ID,
		PackageName:     pkg.Name,
		Currency:        currency,
		AmountPaid:      int64(math.Round(major * 100)),
		PayType:         payType,
		AppointmentDate: in.AppointmentDate,
		TimeWindow:      in.TimeWindow,
		Country:         in.Country,
		City:            in.City,
		CustomerName:    in.Name,
		CustomerPhone:   in.Phone,
		CustomerEmail:   optional(in.Email),
		InstagramHandle: optional(in.InstagramHandle),
		Notes:           optional(in.Notes),
		Status:          storage.StatusPendingPayment,
		PaymentMethod:   storage.PaymentMethodBankTransfer,
		CreatedAt:       now.UTC(),
	}

	if err := s.insertWithReference(ctx, b, now); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		"reference", b.Reference,
		"package", b.PackageID,
		"amount_minor", b.AmountPaid,
		"currency", b.Currency,
	)
	s.notify(ctx, *b)
	return b, nil
}

func (s *Service) insertWithReference(ctx context.Context, b *storage.Booking, now time.Time) error {
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		ref, err := NewReference(s.prefix, now, s.random)
		if err != nil {
			return err
		}
		b.Reference = ref

		err = s.store.InsertBooking(ctx, b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrDuplicate) {
			return fmt.Errorf("failed to store booking: %w", err)
		}
		s.logger.Warn("booking reference collision, regenerating", "reference", ref, "attempt", attempt)
	}
	return ErrReferenceExhausted
}

// notify runs the notifier detached from the request lifetime.
func (s *Service) notify(ctx context.Context, b storage.Booking) {
	if s.notifier == nil {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		if err := s.notifier.NotifyBooking(nctx, b); err != nil {
			metrics.RecordNotification("failed")
			s.logger.Error("booking notification failed", "reference", b.Reference, "error", err)
			return
		}
		metrics.RecordNotification("sent")
	}()
}

// Wait blocks until background notifications have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// VerifyExternalPayment checks a gateway checkout session and marks the
// bookings tied to it paid when the gateway reports payment. Repeating the
// call for a paid session rewrites the same status.
func (s *Service) VerifyExternalPayment(ctx context.Context, sessionID string) (*Verification, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, &MissingFieldsError{Fields: []string{"session_id"}}
	}
	if s.payments == nil {
		return nil, ErrPaymentsNotConfigured
	}

	session, err := s.payments.CheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payments.ErrNotConfigured) {
			return nil, ErrPaymentsNotConfigured
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamVerificationFailed, err)
	}

	result := &Verification{Status: session.PaymentStatus}
	if ref := session.BookingReference(); ref != "" {
		result.Reference = &ref
	}

	if session.Paid() {
		result.Status = string(storage.StatusPaid)
		n, err := s.store.UpdateStatusBySession(ctx, sessionID, storage.StatusPaid)
		if err != nil {
			return nil, fmt.Errorf("failed to mark session paid: %w", err)
		}
		s.logger.Info("payment verified", "session_id", sessionID, "bookings_updated", n)
	}

	b, err := s.store.FindBookingBySession(ctx, sessionID)
	switch {
	case err == nil:
		result.Booking = b
	case storage.IsNotFound(err):
	default:
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return result, nil
}

// SetStatus overwrites a booking's status. Any of the valid states may
// follow any other. The legacy "pending" alias is stored as pending_payment.
func (s *Service) SetStatus(ctx context.Context, reference, status string) (storage.Status, error) {
	reference = strings.TrimSpace(reference)
	var missing []string
	if reference == "" {
		missing = append(missing, "reference")
	}
	if strings.TrimSpace(status) == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return "", &MissingFieldsError{Fields: missing}
	}

	st, ok := storage.ParseStatus(status)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	st = st.Canonical()

	if err := s.store.UpdateBookingStatus(ctx, reference, st); err != nil {
		return "", err
	}
	s.logger.Info("booking status updated", "reference", reference, "status", st)
	return st, nil
}

func trimInput(in Input) Input {
	in.PackageID = strings.TrimSpace(in.PackageID)
	in.PayType = strings.TrimSpace(in.PayType)
	in.AppointmentDate = strings.TrimSpace(in.AppointmentDate)
	in.TimeWindow = strings.TrimSpace(in.TimeWindow)
	in.Country = strings.TrimSpace(in.Country)
	in.City = strings.TrimSpace(in.City)
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.InstagramHandle = strings.TrimSpace(in.InstagramHandle)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
