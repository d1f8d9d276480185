// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads the dashboard configuration with precedence
// ENV > YAML file > defaults and supports hot reload of the file.
package config

import (
	"time"
)

// AppConfig is the complete dashboard configuration.
type AppConfig struct {
	Listen    string          `yaml:"listen"`
	API       APIConfig       `yaml:"api"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Log       LogConfig       `yaml:"log"`
	Tracing   TracingConfig   `yaml:"tracing"`

	// Version is set from the binary, never from file or env.
	Version string `yaml:"-"`
}

// APIConfig controls caller authentication.
type APIConfig struct {
	Token        string        `yaml:"token"`
	User         string        `yaml:"user"`
	SessionTTL   time.Duration `yaml:"sessionTTL"`
	SessionStore string        `yaml:"sessionStore"` // memory | redis
	Redis        RedisConfig   `yaml:"redis"`
}

// RedisConfig holds the session store connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GatewayConfig is the Gateway endpoint and credential.
type GatewayConfig struct {
	URL              string        `yaml:"url"`
	Token            string        `yaml:"token"`
	ClientName       string        `yaml:"clientName"`
	Budget           time.Duration `yaml:"budget"`
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerReset     time.Duration `yaml:"breakerReset"`
}

// RateLimitConfig bounds gateway-backed routes per principal.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
	// GlobalPerMinute is the per-IP ceiling for every route.
	GlobalPerMinute int `yaml:"globalPerMinute"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // grpc | http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// Session store kinds.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Defaults returns the configuration used when neither file nor env set a value.
func Defaults() AppConfig {
	return AppConfig{
		Listen: ":8080",
		API: APIConfig{
			SessionTTL:   12 * time.Hour,
			SessionStore: SessionStoreMemory,
			Redis:        RedisConfig{Addr: "localhost:6379"},
		},
		Gateway: GatewayConfig{
			ClientName:       "dashboard",
			Budget:           15 * time.Second,
			BreakerThreshold: 5,
			BreakerReset:     30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RPS:             2,
			Burst:           5,
			GlobalPerMinute: 300,
		},
		Log: LogConfig{Level: "info"},
		Tracing: TracingConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}
