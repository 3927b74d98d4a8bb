package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/shamanic-technologies/lifecycle-emails/internal/auth"
	"github.com/shamanic-technologies/lifecycle-emails/internal/storage"
)

// NewRouter creates a chi.Mux with all routes, middleware, and handlers
// configured. Health and metrics endpoints are open; everything else
// requires the service API key.
func NewRouter(sender EmailSender, deployer TemplateDeployer, queries storage.Querier, apiKey string, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CorrelationIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(MetricsMiddleware)
	r.Use(RecoverMiddleware(log))

	r.Get("/health", HealthHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.APIKeyAuth(apiKey))

		r.Post("/send", SendEmailHandler(sender))
		r.Put("/templates", DeployTemplatesHandler(deployer))
		r.Get("/templates", ListTemplatesHandler(queries))
		r.Post("/stats", EmailStatsHandler(queries))
	})

	return r
}
