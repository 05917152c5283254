package router

import (
	"net/http"

	"donutsmp-market-api/internal/handler"
	"donutsmp-market-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	HistoryHandler *handler.HistoryHandler
	ProxyHandler   *handler.ProxyHandler
	StaticDir      string
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Monitoring endpoints - public
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
	}

	// Local archive operations - public, the archive holds no secrets
	if cfg.HistoryHandler != nil {
		r.Route("/history", func(r chi.Router) {
			r.Get("/", cfg.HistoryHandler.GetHistory)
			r.Post("/", cfg.HistoryHandler.AppendHistory)
			r.Post("/overwrite", cfg.HistoryHandler.OverwriteHistory)
			r.Post("/compact", cfg.HistoryHandler.CompactHistory)
		})
	}

	// Upstream pass-through - requires an Authorization header to forward
	if cfg.ProxyHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/transactions/{page}", cfg.ProxyHandler.Transactions)
			r.Get("/listings/{page}", cfg.ProxyHandler.Listings)
			r.Get("/stats/{username}", cfg.ProxyHandler.PlayerStats)
		})
	}

	// Frontend assets, served for every path no API route claims
	if cfg.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.StaticDir))
		r.Handle("/*", fileServer)
	}

	return r
}
