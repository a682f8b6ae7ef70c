package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"capstan/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Run preflight checks and report external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			results := preflight.RunAll(cmd.Context(), cfg)
			fmt.Fprintln(out, renderPreflight(out, results))

			depRows := make([][]string, 0, 2)
			for _, status := range preflight.CheckSystemDeps(cfg) {
				state := "available"
				if !status.Available {
					state = status.Detail
				}
				depRows = append(depRows, []string{status.Name, status.Command, state})
			}
			fmt.Fprintln(out, renderTable(
				out,
				[]string{"Tool", "Command", "Status"},
				depRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}

func renderPreflight(out io.Writer, results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		state := "ok"
		if !result.Passed {
			state = "failed"
		}
		rows = append(rows, []string{result.Name, state, result.Detail})
	}
	return renderTable(
		out,
		[]string{"Check", "Result", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	)
}
