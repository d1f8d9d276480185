// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envReader parses typed values and logs where each one came from.
// Invalid values fall back to the current value with a warning.
type envReader struct {
	lookup LookupFunc
	logger zerolog.Logger
}

func (e envReader) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e envReader) String(key string, current string) string {
	v, ok := e.raw(key)
	if !ok {
		return current
	}
	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "password") {
		e.logger.Debug().Str("key", key).Str("source", "environment").Bool("sensitive", true).Msg("using environment variable")
	} else {
		e.logger.Debug().Str("key", key).Str("value", v).Str("source", "environment").Msg("using environment variable")
	}
	return v
}

func (e envReader) Int(key string, current int) int {
	v, ok := e.raw(key)
	if !ok {
		return current
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.invalid(key, v, "integer")
		return current
	}
	e.logger.Debug().Str("key", key).Int("value", i).Str("source", "environment").Msg("using environment variable")
	return i
}

func (e envReader) Duration(key string, current time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return current
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.invalid(key, v, "duration")
		return current
	}
	e.logger.Debug().Str("key", key).Dur("value", d).Str("source", "environment").Msg("using environment variable")
	return d
}

// Bool accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func (e envReader) Bool(key string, current bool) bool {
	v, ok := e.raw(key)
	if !ok {
		return current
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		e.invalid(key, v, "boolean")
		return current
	}
}

func (e envReader) Float(key string, current float64) float64 {
	v, ok := e.raw(key)
	if !ok {
		return current
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.invalid(key, v, "float")
		return current
	}
	e.logger.Debug().Str("key", key).Float64("value", f).Str("source", "environment").Msg("using environment variable")
	return f
}

func (e envReader) invalid(key, value, kind string) {
	e.logger.Warn().
		Str("key", key).
		Str("value", value).
		Str("event", "config.env_invalid").
		Msgf("invalid %s in environment variable, keeping previous value", kind)
}

// applyEnv overrides cfg with DASH_* variables.
func applyEnv(cfg *AppConfig, env envReader) {
	cfg.Listen = env.String("DASH_LISTEN", cfg.Listen)

	cfg.API.Token = env.String("DASH_API_TOKEN", cfg.API.Token)
	cfg.API.User = env.String("DASH_API_USER", cfg.API.User)
	cfg.API.SessionTTL = env.Duration("DASH_SESSION_TTL", cfg.API.SessionTTL)
	cfg.API.SessionStore = env.String("DASH_SESSION_STORE", cfg.API.SessionStore)
	cfg.API.Redis.Addr = env.String("DASH_REDIS_ADDR", cfg.API.Redis.Addr)
	cfg.API.Redis.Password = env.String("DASH_REDIS_PASSWORD", cfg.API.Redis.Password)
	cfg.API.Redis.DB = env.Int("DASH_REDIS_DB", cfg.API.Redis.DB)

	cfg.Gateway.URL = env.String("DASH_GATEWAY_URL", cfg.Gateway.URL)
	cfg.Gateway.Token = env.String("DASH_GATEWAY_TOKEN", cfg.Gateway.Token)
	cfg.Gateway.ClientName = env.String("DASH_GATEWAY_CLIENT_NAME", cfg.Gateway.ClientName)
	cfg.Gateway.Budget = env.Duration("DASH_GATEWAY_BUDGET", cfg.Gateway.Budget)
	cfg.Gateway.BreakerThreshold = env.Int("DASH_GATEWAY_BREAKER_THRESHOLD", cfg.Gateway.BreakerThreshold)
	cfg.Gateway.BreakerReset = env.Duration("DASH_GATEWAY_BREAKER_RESET", cfg.Gateway.BreakerReset)

	cfg.RateLimit.RPS = env.Float("DASH_RATE_LIMIT_RPS", cfg.RateLimit.RPS)
	cfg.RateLimit.Burst = env.Int("DASH_RATE_LIMIT_BURST", cfg.RateLimit.Burst)
	cfg.RateLimit.GlobalPerMinute = env.Int("DASH_RATE_LIMIT_GLOBAL_PER_MINUTE", cfg.RateLimit.GlobalPerMinute)

	cfg.Log.Level = env.String("DASH_LOG_LEVEL", cfg.Log.Level)

	cfg.Tracing.Enabled = env.Bool("DASH_TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = env.String("DASH_TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = env.String("DASH_TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = env.Float("DASH_TRACING_SAMPLING_RATE", cfg.Tracing.SamplingRate)
}
