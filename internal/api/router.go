package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/aiox-platform/travelbot/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	TravelAssistant http.HandlerFunc
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	WebhookRateLimiter func(http.Handler) http.Handler

	// Storage backs the exchange records.
	Storage Pinger
	// NATSHealthy is nil when turn events are disabled.
	NATSHealthy func() bool
}

func NewRouter(cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe: always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":  "healthy",
			"storage": "healthy",
			"nats":    "healthy",
		}

		status := http.StatusOK

		if cfg.Storage == nil {
			health["storage"] = "not configured"
		} else if err := cfg.Storage.Ping(r.Context()); err != nil {
			health["storage"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if cfg.NATSHealthy == nil {
			health["nats"] = "not configured"
		} else if !cfg.NATSHealthy() {
			// Turn events are optional; report but stay ready.
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.WebhookRateLimiter != nil {
			r.With(cfg.WebhookRateLimiter).Post("/travel_assistant", h.TravelAssistant)
		} else {
			r.Post("/travel_assistant", h.TravelAssistant)
		}
	})

	return r
}
