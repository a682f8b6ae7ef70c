package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"capstan/internal/config"
	"capstan/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventReleaseCompleted, notifications.Payload{"project": "example 1.0.0"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "release started",
			event: notifications.EventReleaseStarted,
			payload: notifications.Payload{
				"project": "quantlib-client 2.4.1",
			},
			expectTitle:   "Capstan - Release Started",
			expectMessage: "Releasing quantlib-client 2.4.1",
			expectTags:    "capstan,release,started",
		},
		{
			name:  "upload completed",
			event: notifications.EventUploadCompleted,
			payload: notifications.Payload{
				"project":    "quantlib-client 2.4.1",
				"repository": "pypi",
			},
			expectTitle:   "Capstan - Uploaded",
			expectMessage: "📦 Uploaded quantlib-client 2.4.1 to pypi",
			expectTags:    "capstan,upload,completed",
		},
		{
			name:  "release completed",
			event: notifications.EventReleaseCompleted,
			payload: notifications.Payload{
				"project":   "quantlib-client 2.4.1",
				"triggered": "3/3",
			},
			expectTitle:    "Capstan - Release Complete",
			expectMessage:  "✅ Released quantlib-client 2.4.1\nRebuild triggers fired: 3/3",
			expectTags:     "capstan,release,completed",
			expectPriority: "high",
		},
		{
			name:  "error",
			event: notifications.EventError,
			payload: notifications.Payload{
				"stage": "upload",
				"error": errors.New("twine exited with status 1"),
			},
			expectTitle:    "Capstan - Error",
			expectMessage:  "❌ Release failed during upload: twine exited with status 1",
			expectTags:     "capstan,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotTitle, gotMessage, gotTags, gotPriority string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				gotMessage = string(body)
				gotTitle = r.Header.Get("Title")
				gotTags = r.Header.Get("Tags")
				gotPriority = r.Header.Get("Priority")
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			svc := notifications.NewService(&cfg)

			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("Publish returned error: %v", err)
			}
			if gotTitle != tc.expectTitle {
				t.Fatalf("title: got %q want %q", gotTitle, tc.expectTitle)
			}
			if gotMessage != tc.expectMessage {
				t.Fatalf("message: got %q want %q", gotMessage, tc.expectMessage)
			}
			if gotTags != tc.expectTags {
				t.Fatalf("tags: got %q want %q", gotTags, tc.expectTags)
			}
			if gotPriority != tc.expectPriority {
				t.Fatalf("priority: got %q want %q", gotPriority, tc.expectPriority)
			}
		})
	}
}

func TestNtfyServiceHonoursEventToggles(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Releases = false
	svc := notifications.NewService(&cfg)

	if err := svc.Publish(context.Background(), notifications.EventReleaseStarted, nil); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if requests.Load() != 0 {
		t.Fatalf("expected suppressed release event, got %d requests", requests.Load())
	}

	if err := svc.Publish(context.Background(), notifications.EventError, notifications.Payload{"error": errors.New("boom")}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if requests.Load() != 1 {
		t.Fatalf("expected error event delivered, got %d requests", requests.Load())
	}
}

func TestNtfyServiceReportsServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	err := svc.Publish(context.Background(), notifications.EventTest, nil)
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status in error, got %v", err)
	}
}
