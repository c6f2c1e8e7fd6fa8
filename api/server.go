/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/constraints      Registered constraint types
  /api/values/*         Stateless value operations
  /api/attributes/*     Attribute definitions and stored values
  /api/users/*          User directory
  /metrics              Prometheus scrape endpoint

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultAllowedOrigins are the local frontend dev servers.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
// Nil origins use DefaultAllowedOrigins.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", CurrentUserHeader},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/constraints", h.ListConstraintTypes)

		// Value routes
		r.Route("/values", func(r chi.Router) {
			r.Post("/format", h.FormatValue)
			r.Post("/input", h.ParseInput)
			r.Post("/step", h.StepValue)
			r.Post("/compare", h.CompareValues)
			r.Post("/condition", h.EvaluateCondition)
			r.Post("/fulltext", h.EvaluateFullText)
		})

		// Attribute routes
		r.Route("/attributes", func(r chi.Router) {
			r.Get("/", h.ListAttributes)
			r.Post("/", h.CreateAttribute)
			r.Get("/{id}", h.GetAttribute)
			r.Get("/{id}/records", h.ListRecords)
			r.Post("/{id}/records", h.AppendRecord)
			r.Post("/{id}/query", h.QueryRecords)
		})

		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
		})
	})

	r.Handle("/metrics", h.Metrics.Handler())

	return r
}
