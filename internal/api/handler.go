// Package api serves the studio's HTTP interface: public content and
// checkout endpoints, admin booking management and admin authentication.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/beautyhome/studio-api/internal/auth"
	"github.com/beautyhome/studio-api/internal/booking"
	"github.com/beautyhome/studio-api/internal/content"
	"github.com/beautyhome/studio-api/internal/middleware"
	"github.com/beautyhome/studio-api/internal/ratelimit"
	"github.com/beautyhome/studio-api/internal/storage"
)

// ContentStore is the persistence the handlers read and write directly.
// storage.Facade implements it.
type ContentStore interface {
	GetDocument(ctx context.Context, section content.Section) content.Document
	PutDocument(ctx context.Context, name string, raw []byte) (content.Document, error)
	ListBookings(ctx context.Context, status *storage.Status) []storage.Booking
	FindBooking(ctx context.Context, reference string) (*storage.Booking, error)
	Ping(ctx context.Context) error
	Backend() storage.Backend
}

// Bookings is the booking lifecycle. booking.Service implements it.
type Bookings interface {
	Packages(ctx context.Context) []content.Package
	CreateBooking(ctx context.Context, in booking.Input) (*storage.Booking, error)
	VerifyExternalPayment(ctx context.Context, sessionID string) (*booking.Verification, error)
	SetStatus(ctx context.Context, reference, status string) (storage.Status, error)
}

// Authenticator checks admin passwords. auth.Authenticator implements it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error)
	Recover(ctx context.Context, recoveryKey, newPassword string) error
}

// Handler serves every route.
type Handler struct {
	store    ContentStore
	bookings Bookings
	authn    Authenticator
	gate     *auth.Gate
	limiter  *ratelimit.Limiter

	logger        *slog.Logger
	logLevel      *slog.LevelVar
	secureCookies bool
	corsOrigins   []string
	maxBodySize   int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithLogLevel exposes level to POST /admin/loglevel.
func WithLogLevel(level *slog.LevelVar) Option {
	return func(h *Handler) { h.logLevel = level }
}

// WithLimiter sets the rate limiter shared by every route.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(h *Handler) { h.limiter = l }
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(h *Handler) { h.secureCookies = secure }
}

// WithCORSOrigins sets the origins allowed on the public routes.
func WithCORSOrigins(origins []string) Option {
	return func(h *Handler) {
		if len(origins) > 0 {
			h.corsOrigins = origins
		}
	}
}

// WithMaxBodySize bounds request bodies.
func WithMaxBodySize(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodySize = n
		}
	}
}

// NewHandler creates a Handler.
func NewHandler(store ContentStore, bookings Bookings, authn Authenticator, gate *auth.Gate, opts ...Option) *Handler {
	h := &Handler{
		store:       store,
		bookings:    bookings,
		authn:       authn,
		gate:        gate,
		logger:      slog.Default(),
		logLevel:    new(slog.LevelVar),
		corsOrigins: []string{"*"},
		maxBodySize: middleware.DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.limiter == nil {
		h.limiter = ratelimit.New(nil, h.logger)
	}
	return h
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	return middleware.Logger(r.Context(), h.logger)
}

// noStore marks responses uncacheable.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
