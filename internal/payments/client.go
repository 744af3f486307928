// Package payments looks up hosted checkout sessions at the card payment
// gateway so bookings paid online can be confirmed.
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// DefaultBaseURL is the Stripe REST API endpoint.
const DefaultBaseURL = stripe.APIURL

// PaymentStatusPaid is the session payment_status of a completed payment.
const PaymentStatusPaid = string(stripe.CheckoutSessionPaymentStatusPaid)

var (
	// ErrNotConfigured is returned when no secret key was supplied.
	ErrNotConfigured = errors.New("payments: gateway not configured")

	// ErrSessionNotFound is returned when the gateway does not know the session.
	ErrSessionNotFound = errors.New("payments: checkout session not found")
)

// Session is the subset of a checkout session the booking flow reads.
type Session struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	Status        string            `json:"status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

// Paid reports whether the gateway considers the session paid.
func (s *Session) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// BookingReference returns the booking reference stored in the session metadata.
func (s *Session) BookingReference() string {
	return s.Metadata["booking_reference"]
}

// Client reads checkout sessions from the gateway.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	api        *client.API
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL (useful for testing with mock server).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a gateway client authenticated with secretKey.
func NewClient(secretKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		secretKey: secretKey,
	}
	for _, opt := range opts {
		opt(c)
	}

	cfg := &stripe.BackendConfig{
		URL:               stripe.String(c.baseURL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if c.httpClient != nil {
		cfg.HTTPClient = c.httpClient
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)

	c.api = &client.API{}
	c.api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return c
}

// CheckoutSession retrieves a checkout session by id.
func (c *Client) CheckoutSession(ctx context.Context, sessionID string) (*Session, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	cs, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, stripeErr.Msg)
		}
		return nil, fmt.Errorf("failed to retrieve session: %w", err)
	}

	return &Session{
		ID:            cs.ID,
		PaymentStatus: string(cs.PaymentStatus),
		Status:        string(cs.Status),
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		Metadata:      cs.Metadata,
	}, nil
}
