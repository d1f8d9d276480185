// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command dashboard serves the dashboard HTTP API in front of the Gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/dashboard/internal/api"
	"github.com/ManuGH/dashboard/internal/audit"
	"github.com/ManuGH/dashboard/internal/auth"
	"github.com/ManuGH/dashboard/internal/config"
	"github.com/ManuGH/dashboard/internal/daemon"
	"github.com/ManuGH/dashboard/internal/gateway"
	"github.com/ManuGH/dashboard/internal/health"
	"github.com/ManuGH/dashboard/internal/log"
	"github.com/ManuGH/dashboard/internal/ratelimit"
	"github.com/ManuGH/dashboard/internal/telemetry"
	"github.com/ManuGH/dashboard/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// safe defaults until config is loaded
	log.Configure(log.Config{Level: "info", Service: daemon.ServiceName, Version: version.Version})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, strings.TrimSpace(*configPath), logger); err != nil {
		logger.Fatal().Err(err).Str("event", "daemon.failed").Msg("dashboard exited with error")
	}
}

func run(ctx context.Context, configPath string, logger zerolog.Logger) error {
	loader := config.NewLoader(configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", configPath).
			Msg("failed to load configuration")
		return err
	}

	log.Configure(log.Config{Level: cfg.Log.Level, Service: daemon.ServiceName, Version: cfg.Version})
	logger = log.WithComponent("daemon")

	source := "env+defaults"
	if configPath != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", configPath).
		Str("listen", cfg.Listen).
		Str("gateway_url", cfg.Gateway.URL).
		Str("session_store", cfg.API.SessionStore).
		Msg("loaded configuration")

	if cfg.API.Token == "" {
		logger.Warn().
			Str("event", "config.api_token_missing").
			Msg("DASH_API_TOKEN is not set; every authenticated route will answer 401")
	}
	if cfg.Gateway.URL == "" {
		logger.Warn().
			Str("event", "config.gateway_missing").
			Msg("gateway URL is not set; gateway routes will answer 502 until configured")
	}

	tp, err := telemetry.NewProvider(ctx, daemon.TelemetryConfig(cfg))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	sessions, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return err
	}

	gw := gateway.New(daemon.GatewayConfig(cfg))
	breaker := api.NewGatewayBreaker(cfg.Gateway.BreakerThreshold, cfg.Gateway.BreakerReset)

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewGatewayChecker(func() bool { return gw.Config().URL != "" }))
	hm.RegisterChecker(health.NewBreakerChecker("gateway_breaker", breaker))
	if pinger, ok := sessions.(interface{ HealthCheck(context.Context) error }); ok {
		hm.RegisterChecker(health.NewPingChecker("session_store", pinger.HealthCheck))
	}

	auditLog := audit.NewLogger()
	srv := api.New(daemon.APIConfig(cfg), api.Deps{
		Sessions: sessions,
		Gateway:  gw,
		Breaker:  breaker,
		Limiter:  ratelimit.New("gateway", daemon.RateLimitConfig(cfg)),
		Audit:    auditLog,
		Health:   hm,
	})

	mgr, err := daemon.NewManager(daemon.DefaultServerConfig(cfg.Listen, cfg.Gateway.Budget), srv.Handler(), logger)
	if err != nil {
		_ = sessions.Close()
		_ = tp.Shutdown(context.Background())
		return err
	}
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	mgr.RegisterShutdownHook("session_store", func(context.Context) error { return sessions.Close() })

	holder := config.NewConfigHolder(cfg, loader)
	return daemon.NewApp(logger, mgr, holder, gw, srv).WithAudit(auditLog).Run(ctx)
}

func newSessionStore(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (auth.SessionStore, error) {
	switch cfg.API.SessionStore {
	case config.SessionStoreRedis:
		store, err := auth.NewRedisStore(ctx, daemon.RedisConfig(cfg), log.WithComponent("session_store"))
		if err != nil {
			return nil, fmt.Errorf("init redis session store: %w", err)
		}
		return store, nil
	default:
		logger.Info().
			Str("event", "auth.session_store.memory").
			Msg("using in-memory session store; sessions do not survive restarts")
		return auth.NewMemoryStore(time.Minute), nil
	}
}
