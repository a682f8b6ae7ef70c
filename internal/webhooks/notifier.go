package webhooks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"capstan/internal/config"
	"capstan/internal/logging"
	"capstan/internal/services"
)

const userAgent = "Capstan/0.1.0"

// Trigger is one named rebuild endpoint.
type Trigger struct {
	Name string
	URL  string
}

// TriggersFromConfig converts the enabled webhook entries into triggers,
// preserving configuration order.
func TriggersFromConfig(cfg *config.Config) []Trigger {
	if cfg == nil {
		return nil
	}
	hooks := cfg.EnabledWebhooks()
	triggers := make([]Trigger, 0, len(hooks))
	for _, hook := range hooks {
		triggers = append(triggers, Trigger{Name: hook.Name, URL: hook.URL})
	}
	return triggers
}

// HTTPDoer describes the HTTP client used by the notifier.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the notifier.
type Option func(*Notifier)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(client HTTPDoer) Option {
	return func(n *Notifier) {
		if client != nil {
			n.client = client
		}
	}
}

// Notifier issues trigger requests.
type Notifier struct {
	client HTTPDoer
}

// NewNotifier builds a notifier with the given per-request timeout.
func NewNotifier(timeoutSeconds int, opts ...Option) *Notifier {
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	notifier := &Notifier{client: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(notifier)
	}
	return notifier
}

// Fire issues a single trigger request. Any response outside 2xx is a failure.
func (n *Notifier) Fire(ctx context.Context, trigger Trigger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, trigger.URL, nil)
	if err != nil {
		return fmt.Errorf("build trigger request for %s: %w", trigger.Name, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "webhooks", trigger.Name, "trigger request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(
			services.ErrExternalTool,
			"webhooks",
			trigger.Name,
			fmt.Sprintf("trigger returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			nil,
		)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// FireAll issues the triggers in order and stops at the first failure. It
// returns the number of successful calls alongside any error; callers report
// partial progress but never retry or roll back.
func (n *Notifier) FireAll(ctx context.Context, triggers []Trigger, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	for i, trigger := range triggers {
		logger.Info(
			"firing rebuild trigger",
			logging.String("trigger", trigger.Name),
			logging.Int("position", i+1),
			logging.Int("total", len(triggers)),
		)
		if err := n.Fire(ctx, trigger); err != nil {
			return i, err
		}
	}
	return len(triggers), nil
}
