// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the whole configuration and reports every problem found.
func Validate(cfg AppConfig) error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(cfg.Listen) == "" {
		add("listen", "must not be empty")
	}

	if cfg.API.SessionTTL <= 0 {
		add("api.sessionTTL", "must be positive, got %s", cfg.API.SessionTTL)
	}
	switch cfg.API.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if cfg.API.Redis.Addr == "" {
			add("api.redis.addr", "required when sessionStore is redis")
		}
	default:
		add("api.sessionStore", "unknown store %q (supported: memory, redis)", cfg.API.SessionStore)
	}

	if cfg.Gateway.URL != "" {
		u, err := url.Parse(cfg.Gateway.URL)
		switch {
		case err != nil:
			add("gateway.url", "invalid URL: %v", err)
		case u.Scheme != "ws" && u.Scheme != "wss":
			add("gateway.url", "scheme must be ws or wss, got %q", u.Scheme)
		case u.Host == "":
			add("gateway.url", "missing host")
		}
	}
	if cfg.Gateway.Budget < 0 {
		add("gateway.budget", "must not be negative, got %s", cfg.Gateway.Budget)
	}
	if cfg.Gateway.BreakerThreshold < 0 {
		add("gateway.breakerThreshold", "must not be negative")
	}
	if cfg.Gateway.BreakerReset < 0 {
		add("gateway.breakerReset", "must not be negative")
	}

	if cfg.RateLimit.RPS < 0 {
		add("rateLimit.rps", "must not be negative")
	}
	if cfg.RateLimit.Burst < 0 {
		add("rateLimit.burst", "must not be negative")
	}
	if cfg.RateLimit.GlobalPerMinute < 0 {
		add("rateLimit.globalPerMinute", "must not be negative")
	}

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			add("log.level", "unknown level %q", cfg.Log.Level)
		}
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Exporter != "grpc" && cfg.Tracing.Exporter != "http" {
			add("tracing.exporter", "unsupported exporter %q (supported: grpc, http)", cfg.Tracing.Exporter)
		}
		if cfg.Tracing.Endpoint == "" {
			add("tracing.endpoint", "required when tracing is enabled")
		}
	}
	if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
		add("tracing.samplingRate", "must be within [0, 1], got %v", cfg.Tracing.SamplingRate)
	}

	return errors.Join(errs...)
}
