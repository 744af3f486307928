// Package config provides configuration loading and validation from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/beautyhome/studio-api/internal/auth"
	"github.com/beautyhome/studio-api/internal/booking"
	"github.com/beautyhome/studio-api/internal/bunny"
	"github.com/beautyhome/studio-api/internal/logging"
	"github.com/beautyhome/studio-api/internal/payments"
)

// Default notification addresses.
const (
	DefaultNotifyFrom = "BeautyHome Bookings <bookings@beautyhomebysuzain.com>"
	DefaultNotifyTo   = "beautyhomebysuzain@gmail.com"
)

// Config holds all application configuration.
type Config struct {
	LogLevel          string // debug, info, warn, error
	LogFormat         string // json or text
	ListenAddr        string // Server listen address (e.g., ":8080")
	MetricsListenAddr string // Metrics listener address (e.g., "localhost:9090")

	DatabaseURL string // SQLite DSN; empty runs bookings on the document store

	StorageZone      string // Edge Storage zone
	StorageAPIURL    string
	StoragePublicURL string // Optional pull-zone base URL for reads
	StorageAccessKey string // Empty makes document writes unavailable

	AdminSecret   string // Shared secret for X-Admin-Key / ?key=
	SessionSecret string // Empty generates a per-process key
	SessionTTL    time.Duration
	SecureCookies bool

	StripeSecretKey string
	StripeAPIURL    string

	ResendAPIKey string
	NotifyFrom   string
	NotifyTo     string

	RedisURL      string // Empty keeps rate-limit counters in process
	PackagesFile  string // Optional YAML catalog
	BookingPrefix string
	CORSOrigins   []string
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding the real environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load parses configuration from environment variables.
// All configuration options have sensible defaults for ease of deployment.
func Load() (*Config, error) {
	ttl := auth.DefaultSessionTTL
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", raw, err)
		}
		ttl = d
	}

	secure := true
	if raw := os.Getenv("SECURE_COOKIES"); raw != "" {
		switch strings.ToLower(raw) {
		case "1", "true", "yes":
			secure = true
		case "0", "false", "no":
			secure = false
		default:
			return nil, fmt.Errorf("invalid SECURE_COOKIES %q", raw)
		}
	}

	cfg := &Config{
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "json"),
		ListenAddr:        getenv("LISTEN_ADDR", ":8080"),
		MetricsListenAddr: getenv("METRICS_LISTEN_ADDR", "localhost:9090"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		StorageZone:      os.Getenv("STORAGE_ZONE"),
		StorageAPIURL:    getenv("STORAGE_API_URL", bunny.DefaultBaseURL),
		StoragePublicURL: os.Getenv("STORAGE_PUBLIC_URL"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),

		AdminSecret:   os.Getenv("ADMIN_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    ttl,
		SecureCookies: secure,

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		StripeAPIURL:    getenv("STRIPE_API_URL", payments.DefaultBaseURL),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		NotifyFrom:   getenv("NOTIFY_FROM", DefaultNotifyFrom),
		NotifyTo:     getenv("NOTIFY_TO", DefaultNotifyTo),

		RedisURL:      os.Getenv("REDIS_URL"),
		PackagesFile:  os.Getenv("PACKAGES_FILE"),
		BookingPrefix: getenv("BOOKING_PREFIX", booking.DefaultPrefix),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "*")),
	}

	return cfg, nil
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.LogFormat); f != "json" && f != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive"))
	}
	if c.StorageAccessKey != "" && c.StorageZone == "" {
		errs = append(errs, fmt.Errorf("STORAGE_ACCESS_KEY requires STORAGE_ZONE"))
	}
	for name, raw := range map[string]string{
		"STORAGE_API_URL":    c.StorageAPIURL,
		"STORAGE_PUBLIC_URL": c.StoragePublicURL,
		"STRIPE_API_URL":     c.StripeAPIURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}
	if len(c.CORSOrigins) == 0 {
		errs = append(errs, fmt.Errorf("CORS_ORIGINS must name at least one origin"))
	}

	return errors.Join(errs...)
}

// DocumentStoreEnabled reports whether a storage zone is configured.
func (c *Config) DocumentStoreEnabled() bool {
	return c.StorageZone != "" || c.StoragePublicURL != ""
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
