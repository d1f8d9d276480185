// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/ManuGH/dashboard/internal/config"
)

func newSessionConfigCmd(opts *rootOptions) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "session-config",
		Short: "Print the endpoint and token a chat client would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.newClient()
			if err != nil {
				return err
			}
			sc, err := client.SessionConfig()
			if err != nil {
				return err
			}
			if !reveal {
				sc.Token = config.MaskSecret(sc.Token)
			}
			return printJSON(cmd.OutOrStdout(), sc)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the token instead of masking it")
	return cmd
}
