// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/dashboard/internal/gateway"
)

func newCallCmd(opts *rootOptions) *cobra.Command {
	var params string
	var budget time.Duration

	cmd := &cobra.Command{
		Use:   "call <method>",
		Short: "Perform one bounded call and print the result",
		Example: `  gatewayctl call cron.list --params '{"all":true}'
  gatewayctl call health --budget 5s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p any
			if params != "" {
				if !json.Valid([]byte(params)) {
					return fmt.Errorf("--params is not valid JSON")
				}
				p = json.RawMessage(params)
			}

			client, err := opts.newClient()
			if err != nil {
				return err
			}
			raw, err := client.Call(cmd.Context(), args[0], p, budget)
			if err != nil {
				return err
			}
			return printRawJSON(cmd.OutOrStdout(), raw)
		},
	}
	cmd.Flags().StringVar(&params, "params", "", "request params as JSON")
	cmd.Flags().DurationVar(&budget, "budget", gateway.DefaultBudget, "time allotted to connect, authenticate and answer")
	return cmd
}
