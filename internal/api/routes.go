// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/dashboard/internal/api/middleware"
)

func (s *Server) routes() http.Handler {
	cfg := s.GetConfig()
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        cfg.TracingService,
		EnableLogging:         true,
		GlobalPerMinute:       cfg.GlobalPerMinute,
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "system/not_found", "Not Found", "NOT_FOUND", "", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusMethodNotAllowed, "system/method_not_allowed", "Method Not Allowed", "METHOD_NOT_ALLOWED", "", nil)
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(s.requireAPIToken).Post("/auth/session", s.handleSessionLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireCaller)
			r.Delete("/auth/session", s.handleSessionLogout)

			r.Route("/gateway", func(r chi.Router) {
				r.Use(s.limitPrincipal)
				r.Get("/cron/jobs", s.handleCronJobs)
				r.Get("/chat/session-config", s.handleChatSessionConfig)
			})
		})
	})

	return r
}
