package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"capstan/internal/config"
)

const userAgent = "Capstan/0.1.0"

// Event identifies a release lifecycle milestone.
type Event string

const (
	EventReleaseStarted   Event = "release_started"
	EventUploadCompleted  Event = "upload_completed"
	EventReleaseCompleted Event = "release_completed"
	EventError            Event = "error"
	EventTest             Event = "test"
)

// Payload carries event-specific values used to format the message.
type Payload map[string]any

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:        topic,
		client:          &http.Client{Timeout: timeout},
		releasesEnabled: cfg.Notifications.Releases,
		errorsEnabled:   cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint        string
	client          *http.Client
	releasesEnabled bool
	errorsEnabled   bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, enabled := n.format(event, payload)
	if !enabled {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventReleaseStarted:
		return message{
			title: "Capstan - Release Started",
			body:  fmt.Sprintf("Releasing %s", payloadString(payload, "project")),
			tags:  []string{"capstan", "release", "started"},
		}, n.releasesEnabled
	case EventUploadCompleted:
		return message{
			title: "Capstan - Uploaded",
			body:  fmt.Sprintf("📦 Uploaded %s to %s", payloadString(payload, "project"), payloadString(payload, "repository")),
			tags:  []string{"capstan", "upload", "completed"},
		}, n.releasesEnabled
	case EventReleaseCompleted:
		body := fmt.Sprintf("✅ Released %s", payloadString(payload, "project"))
		if triggered := payloadString(payload, "triggered"); triggered != "" {
			body = fmt.Sprintf("%s\nRebuild triggers fired: %s", body, triggered)
		}
		return message{
			title:    "Capstan - Release Complete",
			body:     body,
			tags:     []string{"capstan", "release", "completed"},
			priority: "high",
		}, n.releasesEnabled
	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Release failed")
		if stage := payloadString(payload, "stage"); stage != "" {
			builder.WriteString(" during ")
			builder.WriteString(stage)
		}
		builder.WriteString(": ")
		if err, ok := payload["error"].(error); ok && err != nil {
			builder.WriteString(strings.TrimSpace(err.Error()))
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "Capstan - Error",
			body:     builder.String(),
			tags:     []string{"capstan", "error", "alert"},
			priority: "high",
		}, n.errorsEnabled
	case EventTest:
		return message{
			title:    "Capstan - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"capstan", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	if value, ok := payload[key]; ok {
		return strings.TrimSpace(fmt.Sprint(value))
	}
	return ""
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
