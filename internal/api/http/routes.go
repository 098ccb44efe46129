package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tubegrab/tubegrab/internal/config"
)

// NewRouter creates a new HTTP router with configured routes, middleware, and
// handlers. It sets up resolve/download routes, health check, and the
// Prometheus metrics endpoint.
func NewRouter(resolver ResolverI, ctrl ControllerI, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	handler := NewDownloadHandler(resolver, ctrl, cfg, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/resolve", handler.Resolve)
		r.Route("/downloads", func(r chi.Router) {
			r.Post("/", handler.StartDownload)
			r.Get("/current", handler.CurrentSession)
			r.Delete("/current", handler.CancelDownload)
			r.Get("/current/events", handler.SessionEvents)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
