// Package api is the HTTP surface of the recommendation engine.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// RouterOptions configures cross-cutting middleware.
type RouterOptions struct {
	CORSOrigins []string
	RateLimit   int           // requests per minute per IP; 0 disables
	Redis       *redis.Client // optional shared rate limit state
}

// NewRouter mounts all endpoints.
//
//	POST /recommend                 original path, same as below
//	POST /api/v1/recommend
//	GET  /api/v1/catalog
//	GET  /api/v1/stats
//	GET  /api/v1/suggestions
//	GET  /api/v1/suggestions/{id}
//	GET  /health
//	GET  /metrics
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(opts.CORSOrigins))
	r.Use(AccessLog)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(opts.RateLimit, opts.Redis))
		r.Use(PrometheusMetrics)

		r.Post("/recommend", h.Recommend)

		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/recommend", h.Recommend)
			r.Get("/catalog", h.Catalog)
			r.Get("/stats", h.Stats)
			r.Get("/suggestions", h.Suggestions)
			r.Get("/suggestions/{id}", h.Suggestion)
		})
	})

	return r
}
