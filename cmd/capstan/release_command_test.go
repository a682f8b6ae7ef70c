package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"capstan/internal/testsupport"
)

func TestReleaseCommandEndToEnd(t *testing.T) {
	var mu sync.Mutex
	hookCalls := 0
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hookCalls++
		mu.Unlock()
	}))
	defer hook.Close()

	env := setupCLITestEnv(t, testsupport.WithWebhooks(
		webhookEntry("rebuild", hook.URL, false),
	))
	writeTestConfig(t, env.configPath, env.cfg)
	stubReleaseBinaries(t, env.baseDir)

	out, _, err := runCLI(t, []string{"release"}, env.configPath)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	requireContains(t, out, "Releasing demo 1.2.3")
	requireContains(t, out, "1/1 rebuild triggers fired")

	mu.Lock()
	fired := hookCalls
	mu.Unlock()
	if fired != 1 {
		t.Fatalf("expected one webhook call, got %d", fired)
	}

	if _, statErr := os.Stat(env.cfg.PypircPath()); !os.IsNotExist(statErr) {
		t.Fatal("credentials file must be removed after the release")
	}

	histOut, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, histOut, "demo")
	requireContains(t, histOut, "completed")
}

func TestReleaseCommandSkipWebhooks(t *testing.T) {
	var mu sync.Mutex
	hookCalls := 0
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hookCalls++
		mu.Unlock()
	}))
	defer hook.Close()

	env := setupCLITestEnv(t, testsupport.WithWebhooks(
		webhookEntry("rebuild", hook.URL, false),
	))
	writeTestConfig(t, env.configPath, env.cfg)
	stubReleaseBinaries(t, env.baseDir)

	out, _, err := runCLI(t, []string{"release", "--skip-webhooks"}, env.configPath)
	if err != nil {
		t.Fatalf("release --skip-webhooks: %v", err)
	}
	requireContains(t, out, "0/0 rebuild triggers fired")

	mu.Lock()
	fired := hookCalls
	mu.Unlock()
	if fired != 0 {
		t.Fatalf("expected no webhook calls, got %d", fired)
	}
}

func TestReleaseCommandFailsWithoutCredentials(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCredentials("", ""))
	writeTestConfig(t, env.configPath, env.cfg)
	stubReleaseBinaries(t, env.baseDir)

	if _, _, err := runCLI(t, []string{"release"}, env.configPath); err == nil {
		t.Fatal("expected release to fail without credentials")
	}
}

func TestStatusCommandReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t)
	stubReleaseBinaries(t, env.baseDir)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Project root")
	requireContains(t, out, "python3")
	requireContains(t, out, "twine")
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications not configured")
}
