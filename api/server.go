/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the planning frontend

ROUTE GROUPS:
  /api/board                 Planning grid reads
  /api/segments/*            Segment writes (add, move, delete)
  /api/absences              Full-day absence writes
  /api/employees/{id}/*      Per-employee variance list and hour summary
  /api/anomalies/{id}/treat  Review decisions
  /api/refresh               Wholesale server resync

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

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/board", h.GetBoard)

		r.Route("/segments", func(r chi.Router) {
			r.Post("/", h.AddSegment)
			r.Post("/move", h.MoveSegment)
			r.Post("/delete", h.DeleteSegment)
		})

		r.Post("/absences", h.SetAbsence)

		r.Route("/employees/{id}", func(r chi.Router) {
			r.Get("/variances", h.ListVariances)
			r.Get("/summary", h.GetSummary)
		})

		r.Post("/anomalies/{id}/treat", h.TreatAnomaly)
		r.Post("/refresh", h.Refresh)
	})

	return r
}
