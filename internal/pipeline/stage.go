package pipeline

import (
	"context"
	"log/slog"

	"capstan/internal/packaging"
)

// Run carries shared state across the stages of one release run.
type Run struct {
	ID      string
	Project packaging.Project

	// Artifacts is populated by the build stage and consumed by upload.
	Artifacts []string

	// Webhook counts recorded by the trigger stage for the release ledger.
	WebhooksFired int
	WebhooksTotal int
}

// Stage describes the contract the runner needs from each pipeline step.
type Stage interface {
	Name() string
	Execute(ctx context.Context, run *Run) error
}

// Cleanup is implemented by stages that hold resources which must be released
// when the run ends, regardless of outcome.
type Cleanup interface {
	Cleanup(ctx context.Context) error
}

// LoggerAware is implemented by stages that want the run-scoped logger.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}

// Detailer is implemented by stages that report a short outcome summary for
// the release ledger.
type Detailer interface {
	Detail() string
}
