/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. Metrics:    Prometheus request counters and latency
  5. CORS:       Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /api/pricing/*   Calculation, promo validation, scenario previews
  /api/rules/*     Rule administration
  /api/promos/*    Promotional code administration
  /api/holidays/*  Holiday table administration
  /api/jobs/*      Posting records for volume discounts
  /api/reset       Database reset (dev only)
  /metrics         Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public; the
  deployment fronts this with the platform gateway.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Pricing routes
		r.Route("/pricing", func(r chi.Router) {
			r.Post("/calculate", h.Calculate)
			r.Post("/promo/validate", h.ValidatePromo)
			r.Get("/scenarios", h.ListScenarios)
			r.Post("/preview", h.PreviewScenarios)
		})

		// Rule administration
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Post("/", h.CreateRule)
			r.Get("/{id}", h.GetRule)
			r.Delete("/{id}", h.DeleteRule)
		})

		// Promotional code administration
		r.Route("/promos", func(r chi.Router) {
			r.Get("/", h.ListPromos)
			r.Post("/", h.CreatePromo)
			r.Delete("/{code}", h.DeletePromo)
			r.Post("/{code}/redeem", h.RedeemPromo)
		})

		// Holiday table administration
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		// Posting records
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", h.CreateJob)
			r.Get("/count", h.CountJobs)
		})

		// Dev only
		r.Post("/reset", h.ResetDatabase)
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
