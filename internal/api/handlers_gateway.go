// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/ManuGH/dashboard/internal/auth"
	"github.com/ManuGH/dashboard/internal/gateway"
	"github.com/ManuGH/dashboard/internal/log"
)

// limitPrincipal applies the per-principal token bucket to gateway routes.
func (s *Server) limitPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := auth.PrincipalFromContext(r.Context())
		if p == nil || !s.limiter.Allow(p.ID) {
			if p != nil {
				s.audit.RateLimited(r, p.ID)
			}
			w.Header().Set("Retry-After", "1")
			writeProblem(w, r, http.StatusTooManyRequests, "system/rate_limited", "Too Many Requests", CodeRateLimited, "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleCronJobs performs exactly one cron.list call and answers with the
// Gateway's result payload unchanged.
func (s *Server) handleCronJobs(w http.ResponseWriter, r *http.Request) {
	budget := s.GetConfig().GatewayBudget

	var list gateway.CronList
	err := s.breaker.Execute(func() error {
		var err error
		list, err = s.gateway.ListCronJobs(r.Context(), budget)
		return err
	})
	if err != nil {
		writeGatewayError(w, r, err)
		return
	}
	log.FromContext(r.Context()).Debug().
		Str(log.FieldEvent, "gateway.cron_listed").
		Int("jobs", len(list.Jobs)).
		Msg("listed cron jobs")

	if len(list.Raw) > 0 {
		writeRawJSON(w, http.StatusOK, list.Raw)
		return
	}
	if list.Jobs == nil {
		list.Jobs = []gateway.CronJob{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleChatSessionConfig hands the caller the endpoint and token for its
// own Gateway session. No Gateway traffic is generated here.
func (s *Server) handleChatSessionConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.gateway.SessionConfig()
	if err != nil {
		writeGatewayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
