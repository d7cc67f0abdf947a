// Package web provides the HTTP transport of the catalog import service.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/JonMunkholm/catalogimport/internal/config"
	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/database"
	"github.com/JonMunkholm/catalogimport/internal/web/middleware"
)

// CatalogCounter reports table sizes for the health endpoint.
type CatalogCounter interface {
	CountCatalog(ctx context.Context) (database.CatalogCounts, error)
}

// Option customizes a Server.
type Option func(*Server)

// WithCatalogCounter adds catalog row counts to /health. A counting error
// marks the service degraded.
func WithCatalogCounter(c CatalogCounter) Option {
	return func(s *Server) { s.counter = c }
}

// WithGatherer serves the metrics of g at cfg.Metrics.Path.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLimiterStore replaces the in-memory rate limit store.
func WithLimiterStore(store limiter.Store) Option {
	return func(s *Server) { s.limitStore = store }
}

// Server is the HTTP server for the import service.
type Server struct {
	service    *core.Service
	cfg        *config.Config
	counter    CatalogCounter
	gatherer   prometheus.Gatherer
	limitStore limiter.Store
	router     *chi.Mux
	server     *http.Server
}

// NewServer creates a Server serving service with the given configuration.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	if s.cfg.Metrics.Enabled && s.gatherer != nil {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/import", func(r chi.Router) {
		r.Get("/template", s.handleTemplate)

		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(s.importRateLimit())
			}
			r.Post("/", s.handleImport)
		})
	})
}

// importRateLimit limits import requests per client IP.
func (s *Server) importRateLimit() func(http.Handler) http.Handler {
	store := s.limitStore
	if store == nil {
		store = memory.NewStore()
	}
	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  int64(s.cfg.Rate.ImportsPerMinute),
	}

	mw := limiterhttp.NewMiddleware(
		limiter.New(store, rate),
		limiterhttp.WithKeyGetter(middleware.ClientIP),
		limiterhttp.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rate.Period.Seconds())))
			s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
		}),
		limiterhttp.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			s.respondError(w, r, err, http.StatusInternalServerError)
		}),
	)
	return mw.Handler
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json encode error", "path", r.URL.Path, "error", err)
	}
}
