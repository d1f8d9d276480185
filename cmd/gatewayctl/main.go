// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command gatewayctl issues one-off Gateway calls with the dashboard's
// configuration and protocol client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ManuGH/dashboard/internal/log"
	"github.com/ManuGH/dashboard/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	url        string
	token      string
	clientName string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "gatewayctl",
		Short:         "Talk to the Gateway the way the dashboard does",
		Version:       version.String(),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log.Configure(log.Config{Level: opts.logLevel, Output: cmd.ErrOrStderr(), Service: "gatewayctl", Version: version.Version})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file (YAML)")
	flags.StringVar(&opts.url, "url", "", "Gateway WebSocket URL (overrides config)")
	flags.StringVar(&opts.token, "token", "", "Gateway token (overrides config)")
	flags.StringVar(&opts.clientName, "client-name", "", "client name sent in the handshake (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		newCallCmd(opts),
		newCronCmd(opts),
		newSessionConfigCmd(opts),
		newConfigCmd(),
	)
	return root
}
