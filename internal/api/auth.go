// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ManuGH/dashboard/internal/auth"
	"github.com/ManuGH/dashboard/internal/log"
	"github.com/ManuGH/dashboard/internal/ratelimit"
)

// requireAPIToken admits only callers presenting the configured API token
// as a bearer token.
func (s *Server) requireAPIToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := s.GetConfig()
		if !auth.AuthorizeRequest(r, cfg.APIToken) {
			s.logAuthFailure(r, "bad_api_token")
			writeUnauthorized(w, r)
			return
		}
		p := auth.NewPrincipal(cfg.APIToken, cfg.User)
		next.ServeHTTP(w, r.WithContext(withPrincipal(r, p)))
	})
}

// requireCaller resolves the principal from a bearer API token or a
// dashboard_session cookie. Unauthenticated requests never reach a handler.
func (s *Server) requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := s.GetConfig()

		if token := auth.BearerToken(r); token != "" {
			if !auth.AuthorizeToken(token, cfg.APIToken) {
				s.logAuthFailure(r, "bad_api_token")
				writeUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r, auth.NewPrincipal(token, cfg.User))))
			return
		}

		id := auth.SessionCookie(r)
		if id == "" {
			s.logAuthFailure(r, "missing_credentials")
			writeUnauthorized(w, r)
			return
		}
		sess, err := s.sessions.Get(r.Context(), id)
		if err != nil {
			if !errors.Is(err, auth.ErrSessionNotFound) {
				log.FromContext(r.Context()).Error().Err(err).
					Str(log.FieldEvent, "auth.session_lookup_failed").
					Msg("session store lookup failed")
			}
			s.logAuthFailure(r, "invalid_session")
			writeUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r, sess.Principal())))
	})
}

func withPrincipal(r *http.Request, p *auth.Principal) context.Context {
	ctx := auth.WithPrincipal(r.Context(), p)
	return log.ContextWithPrincipalID(ctx, p.ID)
}

func (s *Server) logAuthFailure(r *http.Request, reason string) {
	log.FromContext(r.Context()).Warn().
		Str(log.FieldEvent, "auth.rejected").
		Str("reason", reason).
		Str("client_ip", ratelimit.GetClientIP(r)).
		Msg("request rejected: unauthenticated")
	s.audit.AuthFailure(r, reason)
}

type sessionResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleSessionLogin exchanges the API token for an HttpOnly session cookie
// so browsers never hold the token itself.
func (s *Server) handleSessionLogin(w http.ResponseWriter, r *http.Request) {
	cfg := s.GetConfig()
	p := auth.PrincipalFromContext(r.Context())

	sess, err := s.sessions.Create(r.Context(), p, cfg.SessionTTL)
	if err != nil {
		log.FromContext(r.Context()).Error().Err(err).
			Str(log.FieldEvent, "auth.session_create_failed").
			Msg("failed to create caller session")
		writeProblem(w, r, http.StatusInternalServerError, "system/internal", "Internal Server Error", CodeInternal, "", nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		Expires:  sess.ExpiresAt,
		MaxAge:   int(cfg.SessionTTL.Seconds()),
	})

	log.FromContext(r.Context()).Info().
		Str(log.FieldEvent, "auth.session_created").
		Str(log.FieldPrincipalID, p.ID).
		Time("expires_at", sess.ExpiresAt).
		Msg("issued caller session")
	s.audit.SessionCreated(r, p.ID, sess.ExpiresAt)

	writeJSON(w, http.StatusOK, sessionResponse{ExpiresAt: sess.ExpiresAt})
}

// handleSessionLogout deletes the caller session and clears the cookie.
func (s *Server) handleSessionLogout(w http.ResponseWriter, r *http.Request) {
	if id := auth.SessionCookie(r); id != "" {
		if err := s.sessions.Delete(r.Context(), id); err != nil {
			log.FromContext(r.Context()).Warn().Err(err).
				Str(log.FieldEvent, "auth.session_delete_failed").
				Msg("failed to delete caller session")
		}
	}
	if p := auth.PrincipalFromContext(r.Context()); p != nil {
		s.audit.SessionRevoked(r, p.ID)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}
