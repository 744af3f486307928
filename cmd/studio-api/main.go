// Package main provides the entry point for the studio API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/beautyhome/studio-api/internal/api"
	"github.com/beautyhome/studio-api/internal/auth"
	"github.com/beautyhome/studio-api/internal/booking"
	"github.com/beautyhome/studio-api/internal/bunny"
	"github.com/beautyhome/studio-api/internal/config"
	"github.com/beautyhome/studio-api/internal/content"
	"github.com/beautyhome/studio-api/internal/logging"
	"github.com/beautyhome/studio-api/internal/metrics"
	"github.com/beautyhome/studio-api/internal/notify"
	"github.com/beautyhome/studio-api/internal/payments"
	"github.com/beautyhome/studio-api/internal/ratelimit"
	"github.com/beautyhome/studio-api/internal/storage"
)

const version = "0.1.0"

// components holds everything the server needs, built from one Config.
type components struct {
	logger   *slog.Logger
	logLevel *slog.LevelVar

	sql        *storage.SQLiteStorage // nil when bookings live in the document store
	store      *storage.Facade
	redis      *redis.Client // nil when rate limits are kept in process
	bookings   *booking.Service
	metrics    http.Handler
	mainRouter http.Handler
}

// close releases the database and Redis connections.
func (c *components) close() {
	if c.sql != nil {
		if err := c.sql.Close(); err != nil {
			c.logger.Error("failed to close database", "error", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.logger.Error("failed to close redis", "error", err)
		}
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run loads configuration, wires the components and serves until a
// termination signal arrives.
func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c, err := initializeComponents(cfg)
	if err != nil {
		return err
	}
	defer c.close()

	c.logger.Info("studio API starting",
		"version", version,
		"listen_addr", cfg.ListenAddr,
		"backend", c.store.Backend(),
	)

	metricsServer := createMetricsServer(cfg, c.metrics)
	if metricsServer != nil {
		go func() {
			c.logger.Info("metrics listener started", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.logger.Error("metrics listener failed", "error", err)
			}
		}()
		defer func() {
			//nolint:errcheck
			metricsServer.Close()
		}()
	}

	server := createServer(cfg, c.mainRouter)
	err = startServerAndWaitForShutdown(c.logger, server)

	// Let detached booking notifications finish before exiting.
	c.bookings.Wait()
	return err
}

// initializeComponents builds the logger, storage, services and router.
func initializeComponents(cfg *config.Config) (*components, error) {
	logger, logLevel, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	c := &components{
		logger:   logger,
		logLevel: logLevel,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Init(reg); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	c.metrics = metrics.HandlerFor(reg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var docs *storage.DocumentStore
	if cfg.DocumentStoreEnabled() {
		client := bunny.NewClient(cfg.StorageZone, cfg.StorageAccessKey,
			bunny.WithBaseURL(cfg.StorageAPIURL),
			bunny.WithPublicURL(cfg.StoragePublicURL),
			bunny.WithHTTPClient(&http.Client{
				Timeout:   15 * time.Second,
				Transport: &bunny.LoggingTransport{Logger: logger},
			}),
		)
		docs = storage.NewDocumentStore(client, logger)
	} else {
		logger.Warn("no storage zone configured, content is served from defaults")
	}

	var relational storage.Relational
	if cfg.DatabaseURL != "" {
		db, err := storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("database unavailable, bookings use the document store", "error", err)
		} else {
			c.sql = db
			relational = db
		}
	}
	c.store = storage.NewFacade(docs, relational, logger)

	catalog := content.BuiltinPackages()
	if cfg.PackagesFile != "" {
		pkgs, err := content.LoadCatalogFile(cfg.PackagesFile)
		if err != nil {
			c.close()
			return nil, fmt.Errorf("failed to load package catalog: %w", err)
		}
		catalog = pkgs
	}

	var notifier booking.Notifier = notify.LogNotifier{Logger: logger}
	if resend := notify.NewResendClient(cfg.ResendAPIKey, cfg.NotifyFrom, cfg.NotifyTo, notify.WithLogger(logger)); resend != nil {
		notifier = resend
	}

	bookingOpts := []booking.Option{
		booking.WithLogger(logger),
		booking.WithNotifier(notifier),
		booking.WithCatalog(catalog),
		booking.WithPrefix(cfg.BookingPrefix),
	}
	if cfg.StripeSecretKey != "" {
		bookingOpts = append(bookingOpts, booking.WithPayments(
			payments.NewClient(cfg.StripeSecretKey, payments.WithBaseURL(cfg.StripeAPIURL)),
		))
	}
	c.bookings = booking.NewService(c.store, bookingOpts...)

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
		if secret, err = auth.RandomSecret(); err != nil {
			c.close()
			return nil, err
		}
	}
	sessions, err := auth.NewSessionManager(secret, cfg.SessionTTL)
	if err != nil {
		c.close()
		return nil, err
	}
	authn := auth.NewAuthenticator(c.store, sessions, logger)
	gate := auth.NewGate(sessions, cfg.AdminSecret)
	if cfg.AdminSecret == "" {
		logger.Warn("ADMIN_SECRET not set, only session login can reach admin routes")
	}

	var limitStore ratelimit.Store
	if cfg.RedisURL != "" {
		client, err := ratelimit.Dial(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("redis unavailable, rate limits are per process", "error", err)
		} else {
			c.redis = client
			limitStore = ratelimit.NewRedisStore(client)
		}
	}
	limiter := ratelimit.New(limitStore, logger)

	handler := api.NewHandler(c.store, c.bookings, authn, gate,
		api.WithLogger(logger),
		api.WithLogLevel(logLevel),
		api.WithLimiter(limiter),
		api.WithSecureCookies(cfg.SecureCookies),
		api.WithCORSOrigins(cfg.CORSOrigins),
	)
	c.mainRouter = handler.NewRouter()

	return c, nil
}

// createServer creates the HTTP server with timeouts.
func createServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// createMetricsServer creates the internal metrics listener, or nil when
// METRICS_LISTEN_ADDR is disabled.
func createMetricsServer(cfg *config.Config, handler http.Handler) *http.Server {
	if cfg.MetricsListenAddr == "" || cfg.MetricsListenAddr == "off" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	return &http.Server{
		Addr:              cfg.MetricsListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// startServerAndWaitForShutdown serves until SIGINT or SIGTERM, then shuts
// down gracefully. A listener failure is returned immediately.
func startServerAndWaitForShutdown(logger *slog.Logger, server *http.Server) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
