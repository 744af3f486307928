// Package ratelimit implements fixed-window request limiting keyed by
// operation and caller fingerprint.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beautyhome/studio-api/internal/metrics"
)

// Rule limits one operation to Max requests per Window per caller.
type Rule struct {
	Key    string
	Max    int64
	Window time.Duration
}

// Limits applied to the public and admin routes.
var (
	ContentGet     = Rule{Key: "content:get", Max: 30, Window: time.Minute}
	ContentPut     = Rule{Key: "content:put", Max: 10, Window: time.Minute}
	CheckoutManual = Rule{Key: "checkout:manual", Max: 5, Window: time.Minute}
	CheckoutVerify = Rule{Key: "checkout:verify", Max: 20, Window: time.Minute}
	AdminBookings  = Rule{Key: "admin:bookings", Max: 20, Window: time.Minute}
	AuthLogin      = Rule{Key: "auth:login", Max: 5, Window: time.Minute}
	AuthRecover    = Rule{Key: "auth:recover", Max: 3, Window: time.Hour}
)

// Result is the outcome of one Check.
type Result struct {
	Blocked    bool
	Count      int64
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, at least 1.
func (r Result) RetryAfterSeconds() int {
	s := int(math.Ceil(r.RetryAfter.Seconds()))
	if s < 1 {
		s = 1
	}
	return s
}

// Limiter applies Rules against a Store.
type Limiter struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// New creates a Limiter. A nil store uses a fresh MemoryStore.
func New(store Store, logger *slog.Logger) *Limiter {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{store: store, now: time.Now, logger: logger}
}

// SetClock replaces the time source used to compute retry hints.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

// Check counts r against rule. Counter failures let the request through.
func (l *Limiter) Check(r *http.Request, rule Rule) Result {
	count, resetAt, err := l.store.Increment(r.Context(), Fingerprint(r, rule.Key), rule.Window)
	if err != nil {
		l.logger.Warn("rate limit counter unavailable", "key", rule.Key, "error", err)
		return Result{}
	}
	if count <= rule.Max {
		return Result{Count: count}
	}
	return Result{Blocked: true, Count: count, RetryAfter: resetAt.Sub(l.now())}
}

// Middleware rejects requests over rule with 429.
func (l *Limiter) Middleware(rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.Check(r, rule)
			if res.Blocked {
				metrics.RecordRateLimited(rule.Key)
				WriteTooManyRequests(w, res)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteTooManyRequests writes the 429 response with its retry hint.
func WriteTooManyRequests(w http.ResponseWriter, res Result) {
	secs := res.RetryAfterSeconds()
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	//nolint:errcheck
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "rate_limited",
		"message": "Too many requests",
		"hint":    fmt.Sprintf("Retry after %d seconds", secs),
	})
}

// Fingerprint identifies the caller of r for key. It combines the first
// X-Forwarded-For hop (else X-Real-IP, else the remote address) with the
// User-Agent. Callers behind a shared proxy without forwarding headers
// collapse to one fingerprint.
func Fingerprint(r *http.Request, key string) string {
	return key + ":" + clientAddr(r) + ":" + r.UserAgent()
}

func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
