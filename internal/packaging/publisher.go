package packaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"capstan/internal/logging"
	"capstan/internal/services"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps python build and twine upload invocations.
type Client struct {
	python        string
	twine         string
	buildTimeout  time.Duration
	uploadTimeout time.Duration
	exec          Executor
}

// New constructs a packaging client.
func New(pythonBinary, twineBinary string, buildTimeoutSeconds, uploadTimeoutSeconds int, opts ...Option) (*Client, error) {
	pythonBinary = strings.TrimSpace(pythonBinary)
	if pythonBinary == "" {
		return nil, errors.New("python binary required")
	}
	twineBinary = strings.TrimSpace(twineBinary)
	if twineBinary == "" {
		return nil, errors.New("twine binary required")
	}
	client := &Client{
		python:        pythonBinary,
		twine:         twineBinary,
		buildTimeout:  time.Duration(buildTimeoutSeconds) * time.Second,
		uploadTimeout: time.Duration(uploadTimeoutSeconds) * time.Second,
		exec:          commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Build produces distribution artifacts in distDir and returns their paths
// sorted by name. The dist directory is recreated so stale artifacts from a
// previous run can never be uploaded.
func (c *Client) Build(ctx context.Context, projectRoot, distDir string, sdist, wheel bool, logger *slog.Logger) ([]string, error) {
	if !sdist && !wheel {
		return nil, errors.New("at least one distribution format required")
	}
	if err := os.RemoveAll(distDir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("prepare dist directory: %w", err)
	}
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return nil, fmt.Errorf("create dist directory: %w", err)
	}

	args := []string{"-m", "build", "--outdir", distDir}
	if sdist && !wheel {
		args = append(args, "--sdist")
	}
	if wheel && !sdist {
		args = append(args, "--wheel")
	}
	args = append(args, projectRoot)

	buildCtx := ctx
	if c.buildTimeout > 0 {
		var cancel context.CancelFunc
		buildCtx, cancel = context.WithTimeout(ctx, c.buildTimeout)
		defer cancel()
	}

	if err := c.run(buildCtx, projectRoot, c.python, args, logger); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "build", c.python, "build failed", err)
	}

	artifacts, err := listArtifacts(distDir)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "build", c.python, "build produced no artifacts", nil)
	}
	return artifacts, nil
}

// Upload publishes the given artifacts with twine using the scoped
// credentials file at pypircPath.
func (c *Client) Upload(ctx context.Context, pypircPath, repository string, artifacts []string, logger *slog.Logger) error {
	if len(artifacts) == 0 {
		return errors.New("no artifacts to upload")
	}

	args := []string{"upload", "--non-interactive", "--config-file", pypircPath, "--repository", repository}
	args = append(args, artifacts...)

	uploadCtx := ctx
	if c.uploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, c.uploadTimeout)
		defer cancel()
	}

	if err := c.run(uploadCtx, "", c.twine, args, logger); err != nil {
		return services.Wrap(services.ErrExternalTool, "upload", c.twine, "upload failed", err)
	}
	return nil
}

func (c *Client) run(ctx context.Context, dir, binary string, args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Debug("running command", logging.String("binary", binary), logging.String("args", strings.Join(args, " ")))
	return c.exec.Run(ctx, dir, binary, args, func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		logger.Debug("tool output", logging.String("binary", filepath.Base(binary)), logging.String("line", line))
	})
}

func listArtifacts(distDir string) ([]string, error) {
	entries, err := os.ReadDir(distDir)
	if err != nil {
		return nil, fmt.Errorf("read dist directory: %w", err)
	}
	artifacts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".whl") || strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".zip") {
			artifacts = append(artifacts, filepath.Join(distDir, name))
		}
	}
	sort.Strings(artifacts)
	return artifacts, nil
}
