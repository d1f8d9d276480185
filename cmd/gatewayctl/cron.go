// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/dashboard/internal/gateway"
)

func newCronCmd(opts *rootOptions) *cobra.Command {
	cron := &cobra.Command{
		Use:   "cron",
		Short: "Scheduled jobs",
	}

	var budget time.Duration
	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List all scheduled jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.newClient()
			if err != nil {
				return err
			}
			jobs, err := client.ListCronJobs(cmd.Context(), budget)
			if err != nil {
				return err
			}
			if asJSON {
				return printRawJSON(cmd.OutOrStdout(), jobs.Raw)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tENABLED")
			for _, j := range jobs.Jobs {
				enabled := "-"
				if j.Enabled != nil {
					enabled = fmt.Sprint(*j.Enabled)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", j.ID, j.Name, enabled)
			}
			return tw.Flush()
		},
	}
	list.Flags().DurationVar(&budget, "budget", gateway.DefaultBudget, "time allotted to the call")
	list.Flags().BoolVar(&asJSON, "json", false, "print the raw result as JSON")

	cron.AddCommand(list)
	return cron
}
