package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"capstan/internal/config"
	"capstan/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent release runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *history.Store) error {
				if len(args) == 1 {
					return showRelease(cmd, store, args[0])
				}

				releases, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(releases) == 0 {
					fmt.Fprintln(out, "No releases recorded")
					return nil
				}

				rows := make([][]string, 0, len(releases))
				for _, release := range releases {
					rows = append(rows, []string{
						shortRunID(release.RunID),
						release.Project,
						release.Version,
						string(release.Status),
						fmt.Sprintf("%d/%d", release.WebhooksFired, release.WebhooksTotal),
						release.StartedAt.Local().Format("2006-01-02 15:04:05"),
						formatDuration(release.Duration(time.Now().UTC())),
					})
				}
				fmt.Fprintln(out, renderTable(
					out,
					[]string{"Run", "Project", "Version", "Status", "Webhooks", "Started", "Duration"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to show")
	return cmd
}

func showRelease(cmd *cobra.Command, store *history.Store, runID string) error {
	release, err := store.GetByRunID(cmd.Context(), strings.TrimSpace(runID))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %s %s -> %s (%s)\n",
		release.RunID, release.Project, release.Version, release.Repository, release.Status)
	if release.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", release.ErrorMessage)
	}

	steps, err := store.StepsForRelease(cmd.Context(), release.ID)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(steps))
	for _, step := range steps {
		detail := step.Detail
		if step.ErrorMessage != "" {
			detail = step.ErrorMessage
		}
		rows = append(rows, []string{
			step.Name,
			string(step.Status),
			detail,
			formatDuration(stepDuration(step)),
		})
	}
	fmt.Fprintln(out, renderTable(
		out,
		[]string{"Stage", "Status", "Detail", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	))
	return nil
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

func stepDuration(step history.Step) time.Duration {
	if step.FinishedAt == nil {
		return 0
	}
	if step.FinishedAt.Before(step.StartedAt) {
		return 0
	}
	return step.FinishedAt.Sub(step.StartedAt)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
