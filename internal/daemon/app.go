// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/dashboard/internal/api"
	"github.com/ManuGH/dashboard/internal/audit"
	"github.com/ManuGH/dashboard/internal/config"
	"github.com/ManuGH/dashboard/internal/gateway"
)

// GatewayConfigurer receives Gateway endpoint and credential updates.
type GatewayConfigurer interface {
	SetConfig(gateway.Config)
}

// App owns the long-lived runtime: config watcher, reload wiring and the
// HTTP server managed by Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.ConfigHolder
	gateway      GatewayConfigurer
	apiServer    *api.Server
	audit        *audit.Logger
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. cfgHolder, gw and apiServer may be
// nil when hot reload is not wanted.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.ConfigHolder, gw GatewayConfigurer, apiServer *api.Server) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		gateway:      gw,
		apiServer:    apiServer,
		reloadSignal: syscall.SIGHUP,
	}
}

// WithAudit records applied reloads on l.
func (a *App) WithAudit(l *audit.Logger) *App {
	a.audit = l
	return a
}

// Run blocks until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.cfgHolder != nil {
		// best-effort: a broken watcher must not block startup
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
		}

		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					a.cfgHolder.Wait()
					return nil
				case cfg := <-applyCh:
					a.Apply(cfg)
				}
			}
		})

		if a.reloadSignal != nil {
			g.Go(func() error {
				hup := make(chan os.Signal, 1)
				signal.Notify(hup, a.reloadSignal)
				defer signal.Stop(hup)

				for {
					select {
					case <-ctx.Done():
						return nil
					case <-hup:
						a.logger.Info().
							Str("event", "config.reload_signal").
							Str("signal", a.reloadSignal.String()).
							Msg("received reload signal, reloading config")
						if err := a.cfgHolder.Reload(ctx); err != nil {
							a.logger.Warn().Err(err).Str("event", "config.reload_failed").Msg("config reload failed")
						}
					}
				}
			})
		}
	}

	g.Go(func() error {
		return a.manager.Start(ctx)
	})

	return g.Wait()
}

// Apply pushes a reloaded configuration into the running components. Calls
// in flight keep the snapshot they started with.
func (a *App) Apply(cfg config.AppConfig) {
	if a.gateway != nil {
		a.gateway.SetConfig(GatewayConfig(cfg))
	}
	if a.apiServer != nil {
		a.apiServer.UpdateConfig(APIConfig(cfg))
	}
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil && cfg.Log.Level != "" {
		zerolog.SetGlobalLevel(level)
	}
	a.logger.Info().
		Str("event", "config.applied").
		Bool("gateway_configured", cfg.Gateway.URL != "").
		Msg("applied reloaded configuration")
	a.audit.ConfigReload("system", audit.ResultSuccess, map[string]string{
		"gateway_configured": audit.Bool(cfg.Gateway.URL != ""),
		"log_level":          cfg.Log.Level,
	})
}
