package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"capstan/internal/logging"
	"capstan/internal/webhooks"
)

func newTriggerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger [name...]",
		Short: "Fire rebuild triggers without releasing",
		Long: "Fire the configured webhook triggers in list order without building or " +
			"uploading anything. With arguments, only the named triggers fire.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			triggers := webhooks.TriggersFromConfig(cfg)
			if len(args) > 0 {
				triggers, err = selectTriggers(triggers, args)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(triggers) == 0 {
				fmt.Fprintln(out, "No webhook triggers configured")
				return nil
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			notifier := webhooks.NewNotifier(cfg.Workflow.WebhookTimeout)
			fired, err := notifier.FireAll(cmd.Context(), triggers, logger)
			if err != nil {
				fmt.Fprintf(out, "Fired %d of %d triggers before failure\n", fired, len(triggers))
				return err
			}

			fmt.Fprintf(out, "Fired %d triggers\n", fired)
			return nil
		},
	}
}

// selectTriggers filters the enabled triggers to the requested names while
// preserving configuration order.
func selectTriggers(triggers []webhooks.Trigger, names []string) ([]webhooks.Trigger, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		wanted[name] = false
	}

	selected := make([]webhooks.Trigger, 0, len(wanted))
	for _, trigger := range triggers {
		if _, ok := wanted[trigger.Name]; ok {
			selected = append(selected, trigger)
			wanted[trigger.Name] = true
		}
	}

	var unknown []string
	for name, matched := range wanted {
		if !matched {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown or disabled triggers: %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}
