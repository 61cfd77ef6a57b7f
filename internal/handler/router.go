package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/activemirror/beacon-chat/internal/middleware"
	"github.com/activemirror/beacon-chat/pkg/logger"
)

// RouterConfig wires handlers and guards into the HTTP router.
type RouterConfig struct {
	Chat        *ChatHandler
	Health      *HealthHandler
	Diagnostics *DiagnosticsHandler

	AllowedOrigins    []string
	ProbeLimit        int
	ProbeWindow       time.Duration
	OperatorJWTSecret string

	Logger *logger.Logger
}

// NewRouter builds the gateway's route tree. The diagnostics route is only
// mounted when an operator secret is configured.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", cfg.Health.Health)
	r.Get("/ready", cfg.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/chat", cfg.Chat.Chat)
	r.With(middleware.ProbeLimit(cfg.ProbeLimit, cfg.ProbeWindow)).Get("/api/chat/health", cfg.Health.Providers)

	if cfg.OperatorJWTSecret != "" && cfg.Diagnostics != nil {
		r.Route("/internal", func(r chi.Router) {
			r.Use(middleware.OperatorAuth(cfg.OperatorJWTSecret))
			r.Use(middleware.RequireScope(middleware.ScopeDiagnostics))
			r.Get("/diagnostics", cfg.Diagnostics.Get)
		})
	}

	return r
}
