package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oakpay/refundbot/internal/observability/metrics"
	"github.com/oakpay/refundbot/internal/slack"
	"github.com/oakpay/refundbot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	SlackWebhooks  *slack.WebhookHandler // nil when running in socket mode
	MetricsHandler http.Handler
	BotMetrics     *metrics.BotMetrics
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthCheck)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.SlackWebhooks != nil {
		r.Route("/slack", func(r chi.Router) {
			r.Post("/events", withLatency(cfg.BotMetrics, "/slack/events", cfg.SlackWebhooks.HandleEvents))
			r.Post("/commands", withLatency(cfg.BotMetrics, "/slack/commands", cfg.SlackWebhooks.HandleCommands))
			r.Post("/interactions", withLatency(cfg.BotMetrics, "/slack/interactions", cfg.SlackWebhooks.HandleInteractions))
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "refundbot",
		"status":  "ok",
	})
}

// withLatency records processing latency for an inbound Slack endpoint.
func withLatency(m *metrics.BotMetrics, endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		m.ObserveWebhookLatency(endpoint, time.Since(start).Seconds())
	}
}
