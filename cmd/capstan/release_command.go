package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"capstan/internal/config"
	"capstan/internal/history"
	"capstan/internal/logging"
	"capstan/internal/notifications"
	"capstan/internal/packaging"
	"capstan/internal/pipeline"
	"capstan/internal/preflight"
	"capstan/internal/webhooks"
)

func newReleaseCommand(ctx *commandContext) *cobra.Command {
	var skipWebhooks bool
	var projectRoot string

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Build, upload, and fire downstream rebuild triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if projectRoot != "" {
				expanded, err := config.ExpandPath(projectRoot)
				if err != nil {
					return fmt.Errorf("resolve project root: %w", err)
				}
				cfg.Paths.ProjectRoot = expanded
			}

			out := cmd.OutOrStdout()

			results := preflight.RunAll(cmd.Context(), cfg)
			if preflight.Failed(results) {
				fmt.Fprintln(out, renderPreflight(out, results))
				return errors.New("preflight checks failed")
			}
			for _, status := range preflight.CheckSystemDeps(cfg) {
				if !status.Available && !status.Optional {
					return fmt.Errorf("missing dependency %s: %s", status.Name, status.Detail)
				}
			}

			project, err := packaging.ReadProject(cfg.Paths.ProjectRoot)
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			client, err := packaging.New(
				cfg.Packaging.PythonBinary,
				cfg.Packaging.TwineBinary,
				cfg.Packaging.BuildTimeout,
				cfg.Packaging.UploadTimeout,
			)
			if err != nil {
				return err
			}

			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			notifier := notifications.NewService(cfg)
			stages := pipeline.Stages(cfg, client, webhooks.NewNotifier(cfg.Workflow.WebhookTimeout), notifier, skipWebhooks)
			runner, err := pipeline.NewRunner(cfg, store, notifier, logger, stages...)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Releasing %s to %s\n", project.Label(), cfg.Index.Repository)
			release, runErr := runner.Run(cmd.Context(), &pipeline.Run{Project: project})
			if runErr != nil {
				if release != nil {
					fmt.Fprintf(out, "Release failed (run %s): %s\n", release.RunID, release.ErrorMessage)
				}
				return runErr
			}

			fmt.Fprintf(out, "Released %s (%d/%d rebuild triggers fired, run %s)\n",
				project.Label(), release.WebhooksFired, release.WebhooksTotal, release.RunID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipWebhooks, "skip-webhooks", false, "Upload without firing rebuild triggers")
	cmd.Flags().StringVar(&projectRoot, "project", "", "Override the configured project root")
	return cmd
}
