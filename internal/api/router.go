package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/beautyhome/studio-api/internal/metrics"
	"github.com/beautyhome/studio-api/internal/middleware"
	"github.com/beautyhome/studio-api/internal/ratelimit"
)

// NewRouter creates the service router.
func (h *Handler) NewRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.HTTPLogging(h.logger))
	r.Use(middleware.MaxBodySize(h.maxBodySize))

	// Public endpoints (no auth)
	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)

	limit := h.limiter.Middleware
	publicCORS := cors.New(cors.Options{
		AllowedOrigins: h.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Admin-Key"},
		MaxAge:         600,
	}).Handler

	r.Route("/content", func(r chi.Router) {
		r.Use(publicCORS, noStore)
		r.With(limit(ratelimit.ContentGet)).Get("/{section}", h.HandleGetContent)
		r.With(limit(ratelimit.ContentPut), h.gate.Middleware).Put("/{section}", h.HandlePutContent)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Use(publicCORS, noStore)
		r.With(limit(ratelimit.ContentGet)).Get("/packages", h.HandleListPackages)
		r.With(limit(ratelimit.CheckoutManual)).Post("/manual", h.HandleManualCheckout)
		r.With(limit(ratelimit.CheckoutVerify)).Get("/verify", h.HandleVerifyCheckout)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(noStore)
		r.With(limit(ratelimit.AuthLogin)).Post("/login", h.HandleLogin)
		r.Get("/login", h.HandleSessionStatus)
		r.Post("/logout", h.HandleLogout)
		r.With(limit(ratelimit.AuthRecover)).Post("/recover", h.HandleRecover)
	})

	// Admin API (session cookie or shared secret)
	r.Route("/admin", func(r chi.Router) {
		r.Use(noStore, limit(ratelimit.AdminBookings), h.gate.Middleware)

		r.Get("/whoami", h.HandleWhoami)
		r.Post("/loglevel", h.HandleSetLogLevel)

		r.Get("/bookings", h.HandleListBookings)
		r.Patch("/bookings", h.HandleSetStatus)
		r.Get("/bookings/{reference}", h.HandleGetBooking)
		r.Patch("/bookings/{reference}", h.HandleSetStatus)
	})

	return r
}
