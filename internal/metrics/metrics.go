// Package metrics provides Prometheus metrics collection for the studio API.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "studio"
	subsystem = "api"
)

var (
	// Using atomic.Pointer for lock-free initialization checks on hot path metrics.
	requestsTotal         atomic.Pointer[prometheus.CounterVec]
	requestDuration       atomic.Pointer[prometheus.HistogramVec]
	authFailuresTotal     atomic.Pointer[prometheus.CounterVec]
	rateLimitedTotal      atomic.Pointer[prometheus.CounterVec]
	storageFallbacksTotal atomic.Pointer[prometheus.CounterVec]
	bookingsCreatedTotal  atomic.Pointer[prometheus.CounterVec]
	notificationsTotal    atomic.Pointer[prometheus.CounterVec]
)

// Init initializes all Prometheus metrics and registers them with the provided registry.
// This should be called once at application startup.
func Init(reg prometheus.Registerer) error {
	requestsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestsTotalVec); err != nil {
		return fmt.Errorf("failed to register requestsTotal: %w", err)
	}

	requestDurationVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestDurationVec); err != nil {
		return fmt.Errorf("failed to register requestDuration: %w", err)
	}

	authFailuresTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_failures_total",
			Help:      "Total number of authentication failures",
		},
		[]string{"reason"},
	)
	if err := reg.Register(authFailuresTotalVec); err != nil {
		return fmt.Errorf("failed to register authFailuresTotal: %w", err)
	}

	rateLimitedTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		},
		[]string{"key"},
	)
	if err := reg.Register(rateLimitedTotalVec); err != nil {
		return fmt.Errorf("failed to register rateLimitedTotal: %w", err)
	}

	storageFallbacksTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "storage_fallbacks_total",
			Help:      "Total number of reads served by a fallback instead of the primary backend",
		},
		[]string{"operation", "fallback"},
	)
	if err := reg.Register(storageFallbacksTotalVec); err != nil {
		return fmt.Errorf("failed to register storageFallbacksTotal: %w", err)
	}

	bookingsCreatedTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bookings_created_total",
			Help:      "Total number of bookings created",
		},
		[]string{"backend", "currency"},
	)
	if err := reg.Register(bookingsCreatedTotalVec); err != nil {
		return fmt.Errorf("failed to register bookingsCreatedTotal: %w", err)
	}

	notificationsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_total",
			Help:      "Total number of booking notifications by outcome",
		},
		[]string{"outcome"},
	)
	if err := reg.Register(notificationsTotalVec); err != nil {
		return fmt.Errorf("failed to register notificationsTotal: %w", err)
	}

	infoGaugeVec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "info",
			Help:      "Studio API version and build information",
		},
		[]string{"version"},
	)
	infoGaugeInstance := infoGaugeVec.WithLabelValues("1.0.0")
	if err := reg.Register(infoGaugeVec); err != nil {
		return fmt.Errorf("failed to register infoGauge: %w", err)
	}
	infoGaugeInstance.Set(1)

	requestsTotal.Store(requestsTotalVec)
	requestDuration.Store(requestDurationVec)
	authFailuresTotal.Store(authFailuresTotalVec)
	rateLimitedTotal.Store(rateLimitedTotalVec)
	storageFallbacksTotal.Store(storageFallbacksTotalVec)
	bookingsCreatedTotal.Store(bookingsCreatedTotalVec)
	notificationsTotal.Store(notificationsTotalVec)

	return nil
}

// RecordRequest increments the requests counter for the given method, path, and status code.
// The path should be the route pattern (e.g., "/content/{section}").
func RecordRequest(method, path, statusCode string) {
	if counter := requestsTotal.Load(); counter != nil {
		counter.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordRequestDuration records the latency for a request in seconds.
func RecordRequestDuration(method, path, statusCode string, durationSeconds float64) {
	if histogram := requestDuration.Load(); histogram != nil {
		histogram.WithLabelValues(method, path, statusCode).Observe(durationSeconds)
	}
}

// RecordAuthFailure increments the auth failures counter for the given reason.
// Common reasons: "invalid_credentials", "invalid_recovery_key", "missing_credential".
func RecordAuthFailure(reason string) {
	if counter := authFailuresTotal.Load(); counter != nil {
		counter.WithLabelValues(reason).Inc()
	}
}

// RecordRateLimited counts a request blocked under the given limiter key.
func RecordRateLimited(key string) {
	if counter := rateLimitedTotal.Load(); counter != nil {
		counter.WithLabelValues(key).Inc()
	}
}

// RecordStorageFallback counts an operation answered from a fallback source,
// e.g. ("list_bookings", "document") or ("get_document", "default").
func RecordStorageFallback(operation, fallback string) {
	if counter := storageFallbacksTotal.Load(); counter != nil {
		counter.WithLabelValues(operation, fallback).Inc()
	}
}

// RecordBookingCreated counts a stored booking.
func RecordBookingCreated(backend, currency string) {
	if counter := bookingsCreatedTotal.Load(); counter != nil {
		counter.WithLabelValues(backend, currency).Inc()
	}
}

// RecordNotification counts a notification attempt by outcome ("sent" or "failed").
func RecordNotification(outcome string) {
	if counter := notificationsTotal.Load(); counter != nil {
		counter.WithLabelValues(outcome).Inc()
	}
}

// Handler returns an HTTP handler for Prometheus metrics in text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns an HTTP handler serving the given registry.
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// GetMetricsText returns the Prometheus text-format output from a registry.
// This is useful for testing and debugging.
func GetMetricsText(reg prometheus.Gatherer) (string, error) {
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	body, err := io.ReadAll(w.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read metrics output: %w", err)
	}

	return string(body), nil
}
