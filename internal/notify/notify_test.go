package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beautyhome/studio-api/internal/storage"
)

func testBooking() storage.Booking {
	notes := "Bring <lashes>"
	return storage.Booking{
		Reference:       "BHS-20260301-AB12",
		PackageName:     "Bridal Package",
		Currency:        "GBP",
		AmountPaid:      12000,
		AppointmentDate: "2026-06-01",
		TimeWindow:      "Morning",
		City:            "London",
		CustomerName:    "Ada",
		CustomerPhone:   "+447000000000",
		Notes:           &notes,
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		minor    int64
		currency string
		want     string
	}{
		{12000, "GBP", "£120.00"},
		{35099, "gbp", "£350.99"},
		{1500000, "NGN", "NGN 15,000.00"},
		{5, "", "£0.05"},
		{123456789, "CHF", "CHF 1,234,567.89"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.minor, tt.currency))
	}
}

func TestRenderBooking(t *testing.T) {
	t.Parallel()
	subject, html, err := RenderBooking(testBooking())
	require.NoError(t, err)

	assert.Equal(t, "New Booking: Ada (2026-06-01)", subject)
	assert.Contains(t, html, "BHS-20260301-AB12")
	assert.Contains(t, html, "£120.00")
	assert.Contains(t, html, "<strong>Email:</strong> N/A")
	assert.Contains(t, html, "Bring &lt;lashes&gt;")
}

func TestResendClient(t *testing.T) {
	t.Parallel()

	var got resendSendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer re_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer server.Close()

	client := NewResendClient("re_test", "Studio <bookings@example.com>", "owner@example.com", WithEndpoint(server.URL))
	require.NotNil(t, client)
	require.NoError(t, client.NotifyBooking(context.Background(), testBooking()))

	assert.Equal(t, []string{"owner@example.com"}, got.To)
	assert.Equal(t, "Studio <bookings@example.com>", got.From)
	assert.Contains(t, got.HTML, "Bridal Package")

	bad := NewResendClient("re_wrong", "a@example.com", "owner@example.com", WithEndpoint(server.URL))
	assert.Error(t, bad.NotifyBooking(context.Background(), testBooking()))
}

func TestNewResendClientRequiresKey(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewResendClient("", "a@example.com", "b@example.com"))
	assert.Nil(t, NewResendClient("key", "a@example.com", " "))
}

func TestLogNotifier(t *testing.T) {
	t.Parallel()
	assert.NoError(t, LogNotifier{}.NotifyBooking(context.Background(), testBooking()))
}
