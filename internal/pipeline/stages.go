package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"capstan/internal/config"
	"capstan/internal/credentials"
	"capstan/internal/logging"
	"capstan/internal/notifications"
	"capstan/internal/packaging"
	"capstan/internal/services"
	"capstan/internal/webhooks"
)

// Stages assembles the release sequence for the given config. The order is
// fixed: credentials, build, upload, then webhook triggers. When
// skipWebhooks is set (or no triggers are configured) the webhook stage
// records zero totals but still runs, keeping the ledger uniform.
func Stages(cfg *config.Config, client *packaging.Client, hooks *webhooks.Notifier, notifier notifications.Service, skipWebhooks bool) []Stage {
	triggers := webhooks.TriggersFromConfig(cfg)
	if skipWebhooks {
		triggers = nil
	}
	return []Stage{
		&credentialsStage{cfg: cfg},
		&buildStage{cfg: cfg, client: client},
		&uploadStage{cfg: cfg, client: client, notifier: notifier},
		&webhookStage{notifier: hooks, triggers: triggers},
	}
}

type credentialsStage struct {
	cfg     *config.Config
	logger  *slog.Logger
	cleanup func() error
}

func (s *credentialsStage) Name() string { return "credentials" }

func (s *credentialsStage) SetLogger(logger *slog.Logger) { s.logger = logger }

func (s *credentialsStage) Detail() string {
	if s.cfg == nil {
		return ""
	}
	return s.cfg.PypircPath()
}

func (s *credentialsStage) Execute(ctx context.Context, run *Run) error {
	if err := s.cfg.ValidateCredentials(); err != nil {
		return services.Wrap(services.ErrConfiguration, s.Name(), "", err.Error(), nil)
	}

	cleanup, err := credentials.WriteScoped(s.cfg.PypircPath(), credentials.Credentials{
		Repository: s.cfg.Index.Repository,
		UploadURL:  s.cfg.Index.UploadURL,
		Username:   s.cfg.Index.Username,
		Password:   s.cfg.Index.Password,
	})
	if err != nil {
		return services.Wrap(services.ErrConfiguration, s.Name(), "", "write credentials file", err)
	}
	s.cleanup = cleanup
	return nil
}

func (s *credentialsStage) Cleanup(ctx context.Context) error {
	if s.cleanup == nil {
		return nil
	}
	return s.cleanup()
}

type buildStage struct {
	cfg    *config.Config
	client *packaging.Client
	logger *slog.Logger
	detail string
}

func (s *buildStage) Name() string { return "build" }

func (s *buildStage) SetLogger(logger *slog.Logger) { s.logger = logger }

func (s *buildStage) Detail() string { return s.detail }

func (s *buildStage) Execute(ctx context.Context, run *Run) error {
	artifacts, err := s.client.Build(
		ctx,
		s.cfg.Paths.ProjectRoot,
		s.cfg.DistDir(),
		s.cfg.Packaging.Sdist,
		s.cfg.Packaging.Wheel,
		s.logger,
	)
	if err != nil {
		return err
	}
	run.Artifacts = artifacts
	s.detail = fmt.Sprintf("%d artifacts", len(artifacts))
	return nil
}

type uploadStage struct {
	cfg      *config.Config
	client   *packaging.Client
	notifier notifications.Service
	logger   *slog.Logger
}

func (s *uploadStage) Name() string { return "upload" }

func (s *uploadStage) SetLogger(logger *slog.Logger) { s.logger = logger }

func (s *uploadStage) Detail() string {
	if s.cfg == nil {
		return ""
	}
	return s.cfg.Index.Repository
}

func (s *uploadStage) Execute(ctx context.Context, run *Run) error {
	err := s.client.Upload(ctx, s.cfg.PypircPath(), s.cfg.Index.Repository, run.Artifacts, s.logger)
	if err != nil {
		return err
	}
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, notifications.EventUploadCompleted, notifications.Payload{
			"project":    run.Project.Label(),
			"repository": s.cfg.Index.Repository,
		}); err != nil && s.logger != nil {
			s.logger.Debug("upload notification failed", logging.Error(err))
		}
	}
	return nil
}

type webhookStage struct {
	notifier *webhooks.Notifier
	triggers []webhooks.Trigger
	logger   *slog.Logger
	fired    int
}

func (s *webhookStage) Name() string { return "webhooks" }

func (s *webhookStage) SetLogger(logger *slog.Logger) { s.logger = logger }

func (s *webhookStage) Detail() string {
	return fmt.Sprintf("%d/%d fired", s.fired, len(s.triggers))
}

func (s *webhookStage) Execute(ctx context.Context, run *Run) error {
	run.WebhooksTotal = len(s.triggers)
	if len(s.triggers) == 0 {
		return nil
	}

	fired, err := s.notifier.FireAll(ctx, s.triggers, s.logger)
	s.fired = fired
	run.WebhooksFired = fired
	return err
}
