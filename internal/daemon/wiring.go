// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"golang.org/x/time/rate"

	"github.com/ManuGH/dashboard/internal/api"
	"github.com/ManuGH/dashboard/internal/auth"
	"github.com/ManuGH/dashboard/internal/config"
	"github.com/ManuGH/dashboard/internal/gateway"
	"github.com/ManuGH/dashboard/internal/ratelimit"
	"github.com/ManuGH/dashboard/internal/telemetry"
)

// ServiceName is reported in logs and traces.
const ServiceName = "dashboard"

// GatewayConfig projects the Gateway section of cfg.
func GatewayConfig(cfg config.AppConfig) gateway.Config {
	return gateway.Config{
		URL: cfg.Gateway.URL,
		Credential: gateway.Credential{
			ClientName: cfg.Gateway.ClientName,
			Token:      cfg.Gateway.Token,
		},
		Budget: cfg.Gateway.Budget,
	}
}

// APIConfig projects the HTTP settings of cfg.
func APIConfig(cfg config.AppConfig) api.Config {
	tracing := ""
	if cfg.Tracing.Enabled {
		tracing = ServiceName
	}
	return api.Config{
		APIToken:        cfg.API.Token,
		User:            cfg.API.User,
		SessionTTL:      cfg.API.SessionTTL,
		GatewayBudget:   cfg.Gateway.Budget,
		GlobalPerMinute: cfg.RateLimit.GlobalPerMinute,
		TracingService:  tracing,
	}
}

// RateLimitConfig projects the per-principal limiter settings of cfg.
func RateLimitConfig(cfg config.AppConfig) ratelimit.Config {
	rl := ratelimit.DefaultConfig()
	rl.Rate = rate.Limit(cfg.RateLimit.RPS)
	rl.Burst = cfg.RateLimit.Burst
	return rl
}

// RedisConfig projects the session store connection of cfg.
func RedisConfig(cfg config.AppConfig) auth.RedisConfig {
	return auth.RedisConfig{
		Addr:     cfg.API.Redis.Addr,
		Password: cfg.API.Redis.Password,
		DB:       cfg.API.Redis.DB,
	}
}

// TelemetryConfig projects the tracing section of cfg.
func TelemetryConfig(cfg config.AppConfig) telemetry.Config {
	return telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    ServiceName,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	}
}
