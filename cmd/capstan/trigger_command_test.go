package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"capstan/internal/testsupport"
)

func recordingServer(t *testing.T, name string, received *[]string, mu *sync.Mutex) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*received = append(*received, name)
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTriggerCommandFiresInConfiguredOrder(t *testing.T) {
	var mu sync.Mutex
	var received []string
	alpha := recordingServer(t, "alpha", &received, &mu)
	beta := recordingServer(t, "beta", &received, &mu)

	env := setupCLITestEnv(t, testsupport.WithWebhooks(
		webhookEntry("alpha", alpha.URL, false),
		webhookEntry("beta", beta.URL, false),
	))
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"trigger"}, env.configPath)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	requireContains(t, out, "Fired 2 triggers")

	mu.Lock()
	order := strings.Join(received, ",")
	mu.Unlock()
	if order != "alpha,beta" {
		t.Fatalf("triggers fired out of order: %s", order)
	}
}

func TestTriggerCommandNamedSubset(t *testing.T) {
	var mu sync.Mutex
	var received []string
	alpha := recordingServer(t, "alpha", &received, &mu)
	beta := recordingServer(t, "beta", &received, &mu)

	env := setupCLITestEnv(t, testsupport.WithWebhooks(
		webhookEntry("alpha", alpha.URL, false),
		webhookEntry("beta", beta.URL, false),
	))
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"trigger", "beta"}, env.configPath)
	if err != nil {
		t.Fatalf("trigger beta: %v", err)
	}
	requireContains(t, out, "Fired 1 triggers")

	mu.Lock()
	got := strings.Join(received, ",")
	mu.Unlock()
	if got != "beta" {
		t.Fatalf("expected only beta to fire, got %s", got)
	}

	if _, _, err := runCLI(t, []string{"trigger", "missing"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown trigger name")
	}
}

func TestTriggerCommandWithoutConfiguredHooks(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"trigger"}, env.configPath)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	requireContains(t, out, "No webhook triggers configured")
}

func TestWebhooksCommandListsTriggers(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithWebhooks(
		webhookEntry("jupyter", "https://example.com/hooks/jupyter", false),
		webhookEntry("satellite", "https://example.com/hooks/satellite", true),
	))
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"webhooks"}, env.configPath)
	if err != nil {
		t.Fatalf("webhooks: %v", err)
	}
	requireContains(t, out, "jupyter")
	requireContains(t, out, "satellite")
	requireContains(t, out, "no")
}
