// Package notify delivers new-booking notifications to the studio owner.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/beautyhome/studio-api/internal/storage"
)

// DefaultEndpoint is the Resend send-email endpoint.
const DefaultEndpoint = "https://api.resend.com/emails"

// ResendClient sends booking emails through the Resend REST API.
type ResendClient struct {
	apiKey     string
	from       string
	to         string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a ResendClient.
type Option func(*ResendClient)

// WithEndpoint overrides the send endpoint (useful for testing with mock server).
func WithEndpoint(endpoint string) Option {
	return func(c *ResendClient) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *ResendClient) {
		c.httpClient = client
	}
}

// WithLogger sets the logger used for delivery results.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ResendClient) {
		c.logger = logger
	}
}

// NewResendClient returns nil when apiKey or a recipient is missing.
func NewResendClient(apiKey, from, to string, opts ...Option) *ResendClient {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(to) == "" {
		return nil
	}
	c := &ResendClient{
		apiKey:     apiKey,
		from:       from,
		to:         to,
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 8 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NotifyBooking emails the owner about a new booking.
func (c *ResendClient) NotifyBooking(ctx context.Context, b storage.Booking) error {
	if c == nil {
		return errors.New("resend client is nil")
	}
	subject, html, err := RenderBooking(b)
	if err != nil {
		return err
	}
	id, err := c.send(ctx, subject, html)
	if err != nil {
		return err
	}
	c.logger.Info("booking notification sent", "reference", b.Reference, "message_id", id)
	return nil
}

func (c *ResendClient) send(ctx context.Context, subject, html string) (string, error) {
	raw, err := json.Marshal(resendSendRequest{
		From:    c.from,
		To:      []string{c.to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return "", fmt.Errorf("resend marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("resend create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return "", fmt.Errorf("resend send failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out resendSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("resend decode response: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("resend response missing id")
	}
	return out.ID, nil
}

type resendSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendSendResponse struct {
	ID string `json:"id"`
}

// LogNotifier records bookings in the log when no mail provider is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

// NotifyBooking logs the booking and never fails.
func (n LogNotifier) NotifyBooking(_ context.Context, b storage.Booking) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("email provider not configured, skipping booking notification",
		"reference", b.Reference,
		"package", b.PackageID,
		"amount", FormatAmount(b.AmountPaid, b.Currency),
	)
	return nil
}
