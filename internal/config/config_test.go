package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"capstan/internal/config"
)

func TestLoadDefaultsUseEnvCredentialsAndExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PYPI_USERNAME", "alice")
	t.Setenv("PYPI_PASSWORD", "secret123")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "capstan", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Index.Username != "alice" || cfg.Index.Password != "secret123" {
		t.Fatalf("expected credentials from env, got %q/%q", cfg.Index.Username, cfg.Index.Password)
	}
	if cfg.Index.UploadURL != "https://upload.pypi.org/legacy/" {
		t.Fatalf("unexpected upload url: %q", cfg.Index.UploadURL)
	}
	if !cfg.Packaging.Sdist || !cfg.Packaging.Wheel {
		t.Fatal("expected sdist and wheel enabled by default")
	}
	if err := cfg.ValidateCredentials(); err != nil {
		t.Fatalf("expected credentials valid, got %v", err)
	}
}

func TestLoadParsesWebhookListInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[[webhook]]
name = "jupyter"
url = "https://example.com/trigger/jupyter"

[[webhook]]
name = "satellite"
url = "https://example.com/trigger/satellite"
disabled = true

[[webhook]]
name = "zipline"
url = "https://example.com/trigger/zipline"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if len(cfg.Webhooks) != 3 {
		t.Fatalf("expected 3 webhooks, got %d", len(cfg.Webhooks))
	}

	enabled := cfg.EnabledWebhooks()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled webhooks, got %d", len(enabled))
	}
	if enabled[0].Name != "jupyter" || enabled[1].Name != "zipline" {
		t.Fatalf("unexpected enabled order: %q, %q", enabled[0].Name, enabled[1].Name)
	}
}

func TestLoadRejectsInvalidWebhook(t *testing.T) {
	tests := []struct {
		name    string
		section string
		wantErr string
	}{
		{
			name:    "missing url",
			section: "[[webhook]]\nname = \"jupyter\"\n",
			wantErr: "url must be set",
		},
		{
			name:    "bad scheme",
			section: "[[webhook]]\nname = \"jupyter\"\nurl = \"ftp://example.com/x\"\n",
			wantErr: "http or https",
		},
		{
			name: "duplicate name",
			section: "[[webhook]]\nname = \"jupyter\"\nurl = \"https://example.com/a\"\n" +
				"[[webhook]]\nname = \"jupyter\"\nurl = \"https://example.com/b\"\n",
			wantErr: "duplicate name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")
			if err := os.WriteFile(path, []byte(tc.section), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateCredentialsRequiresSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Index.Username = ""
	cfg.Index.Password = ""
	if err := cfg.ValidateCredentials(); err == nil {
		t.Fatal("expected missing username error")
	}
	cfg.Index.Username = "alice"
	if err := cfg.ValidateCredentials(); err == nil {
		t.Fatal("expected missing password error")
	}
	cfg.Index.Password = "secret123"
	if err := cfg.ValidateCredentials(); err != nil {
		t.Fatalf("expected credentials valid, got %v", err)
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load cleanly, exists=%v err=%v", exists, err)
	}
}
