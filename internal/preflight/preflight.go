package preflight

import (
	"context"

	"capstan/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckProjectRoot(cfg.Paths.ProjectRoot),
		CheckCredentials(cfg),
	}

	if len(cfg.EnabledWebhooks()) == 0 {
		results = append(results, Result{
			Name:   "Webhook triggers",
			Passed: true,
			Detail: "none configured (no downstream rebuilds will fire)",
		})
	} else {
		results = append(results, Result{
			Name:   "Webhook triggers",
			Passed: true,
			Detail: webhookSummary(cfg),
		})
	}

	return results
}

// Failed reports whether any non-optional check did not pass.
func Failed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return true
		}
	}
	return false
}
