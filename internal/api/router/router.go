package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/caseylessard/hilljump-sub001/internal/api/handlers"
	"github.com/caseylessard/hilljump-sub001/internal/api/middleware"
)

// Config holds router configuration
type Config struct {
	DripHandler   *handlers.DripHandler
	HealthHandler *handlers.HealthHandler
	CORSOrigin    string
}

// NewRouter creates a new HTTP router
func NewRouter(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", cfg.HealthHandler.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/drip", func(r chi.Router) {
			r.Get("/cache/stats", cfg.DripHandler.GetCacheStats)
			r.Post("/recompute-all", cfg.DripHandler.RecomputeAll)

			r.Get("/{ticker}", cfg.DripHandler.GetDrip)
			r.Get("/{ticker}/stored", cfg.DripHandler.GetStored)
			r.Post("/{ticker}/recompute", cfg.DripHandler.Recompute)
		})
	})

	return r
}
