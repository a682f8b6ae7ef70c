package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"capstan/internal/config"
	"capstan/internal/history"
	"capstan/internal/logging"
	"capstan/internal/notifications"
	"capstan/internal/services"
)

// Runner executes the release stages in order with fail-fast semantics.
type Runner struct {
	cfg      *config.Config
	store    *history.Store
	notifier notifications.Service
	logger   *slog.Logger
	stages   []Stage
	lockPath string
}

// NewRunner constructs a runner over the given stages.
func NewRunner(cfg *config.Config, store *history.Store, notifier notifications.Service, logger *slog.Logger, stages ...Stage) (*Runner, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("runner requires config and history store")
	}
	if len(stages) == 0 {
		return nil, errors.New("runner requires at least one stage")
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Runner{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		stages:   stages,
		lockPath: filepath.Join(cfg.Paths.LogDir, "capstan.lock"),
	}, nil
}

// Run executes the pipeline for the given run and returns the persisted
// release record. The returned error is the first stage failure, if any;
// prior stages' side effects are never rolled back.
func (r *Runner) Run(ctx context.Context, run *Run) (*history.Release, error) {
	if run == nil {
		return nil, errors.New("run required")
	}
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}

	lock := flock.New(r.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire release lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another capstan release is already running")
	}
	defer func() {
		_ = lock.Unlock()
	}()

	runCtx := services.WithRunID(ctx, run.ID)
	runLogger := logging.WithContext(runCtx, r.logger)

	release, err := r.store.StartRelease(runCtx, run.ID, run.Project.Name, run.Project.Version, r.cfg.Index.Repository)
	if err != nil {
		return nil, fmt.Errorf("record release start: %w", err)
	}

	runLogger.Info(
		"release started",
		logging.String(logging.FieldEventType, "release_start"),
		logging.String("project", run.Project.Label()),
		logging.Int("stages", len(r.stages)),
	)
	r.publish(runCtx, runLogger, notifications.EventReleaseStarted, notifications.Payload{
		"project": run.Project.Label(),
	})

	var cleanups []Cleanup
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i].Cleanup(runCtx); err != nil {
				runLogger.Error("stage cleanup failed", logging.Error(err))
			}
		}
	}()

	for _, stage := range r.stages {
		if err := r.runStage(runCtx, runLogger, stage, run, release, &cleanups); err != nil {
			return release, err
		}
	}

	release.Status = history.StatusCompleted
	release.WebhooksFired = run.WebhooksFired
	release.WebhooksTotal = run.WebhooksTotal
	if err := r.store.FinishRelease(runCtx, release); err != nil {
		runLogger.Error("failed to persist release result", logging.Error(err))
	}

	runLogger.Info(
		"release completed",
		logging.String(logging.FieldEventType, "release_complete"),
		logging.String("project", run.Project.Label()),
		logging.Int("webhooks_fired", run.WebhooksFired),
		logging.Int("webhooks_total", run.WebhooksTotal),
	)
	r.publish(runCtx, runLogger, notifications.EventReleaseCompleted, notifications.Payload{
		"project":   run.Project.Label(),
		"triggered": fmt.Sprintf("%d/%d", run.WebhooksFired, run.WebhooksTotal),
	})

	return release, nil
}

func (r *Runner) runStage(ctx context.Context, logger *slog.Logger, stage Stage, run *Run, release *history.Release, cleanups *[]Cleanup) error {
	stageCtx := services.WithStage(ctx, stage.Name())
	stageLogger := logging.WithContext(stageCtx, logger)
	if aware, ok := stage.(LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}
	if cleanup, ok := stage.(Cleanup); ok {
		*cleanups = append(*cleanups, cleanup)
	}

	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	step, err := r.store.StartStep(stageCtx, release.ID, stage.Name())
	if err != nil {
		return fmt.Errorf("record stage start: %w", err)
	}

	if stageErr := stage.Execute(stageCtx, run); stageErr != nil {
		return r.handleFailure(stageCtx, stageLogger, stage, run, release, step, stageErr)
	}

	detail := stageDetail(stage)
	if err := r.store.FinishStep(stageCtx, step, history.StatusCompleted, detail, ""); err != nil {
		stageLogger.Error("failed to persist stage result", logging.Error(err))
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("detail", detail),
	)
	return nil
}

func (r *Runner) handleFailure(ctx context.Context, logger *slog.Logger, stage Stage, run *Run, release *history.Release, step *history.Step, stageErr error) error {
	message := strings.TrimSpace(stageErr.Error())

	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.Error(stageErr),
	)

	if err := r.store.FinishStep(ctx, step, history.StatusFailed, stageDetail(stage), message); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}

	release.Status = history.StatusFailed
	release.ErrorMessage = message
	release.WebhooksFired = run.WebhooksFired
	release.WebhooksTotal = run.WebhooksTotal
	if err := r.store.FinishRelease(ctx, release); err != nil {
		logger.Error("failed to persist release failure", logging.Error(err))
	}

	r.publish(ctx, logger, notifications.EventError, notifications.Payload{
		"stage": stage.Name(),
		"error": stageErr,
	})

	return stageErr
}

func (r *Runner) publish(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := r.notifier.Publish(ctx, event, payload); err != nil {
		logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

func stageDetail(stage Stage) string {
	if detailer, ok := stage.(Detailer); ok {
		return strings.TrimSpace(detailer.Detail())
	}
	return ""
}
