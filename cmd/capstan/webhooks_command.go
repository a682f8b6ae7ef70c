package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newWebhooksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "webhooks",
		Short: "List configured rebuild triggers in firing order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(cfg.Webhooks) == 0 {
				fmt.Fprintln(out, "No webhook triggers configured")
				return nil
			}

			rows := make([][]string, 0, len(cfg.Webhooks))
			position := 0
			for _, hook := range cfg.Webhooks {
				order := "-"
				if !hook.Disabled {
					position++
					order = strconv.Itoa(position)
				}
				rows = append(rows, []string{order, hook.Name, hook.URL, yesNo(!hook.Disabled)})
			}
			fmt.Fprintln(out, renderTable(
				out,
				[]string{"Order", "Name", "URL", "Enabled"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
