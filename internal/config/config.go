package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StagingDir  string `toml:"staging_dir"`
	LogDir      string `toml:"log_dir"`
}

// Index contains configuration for the target package index.
type Index struct {
	Repository string `toml:"repository"`
	UploadURL  string `toml:"upload_url"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
}

// Packaging contains configuration for the build and upload tools.
type Packaging struct {
	PythonBinary  string `toml:"python_binary"`
	TwineBinary   string `toml:"twine_binary"`
	BuildTimeout  int    `toml:"build_timeout"`
	UploadTimeout int    `toml:"upload_timeout"`
	Sdist         bool   `toml:"sdist"`
	Wheel         bool   `toml:"wheel"`
}

// Webhook describes one downstream rebuild trigger. Triggers fire in the
// order they appear in the configuration file.
type Webhook struct {
	Name     string `toml:"name"`
	URL      string `toml:"url"`
	Disabled bool   `toml:"disabled"`
}

// Workflow contains pipeline timing configuration.
type Workflow struct {
	WebhookTimeout int `toml:"webhook_timeout"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Releases       bool   `toml:"releases"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Capstan.
//
// Configuration sections by subsystem:
//   - Paths: project root, staging workspace, and log directory
//   - Index: package index repository, upload endpoint, and credentials
//   - Packaging: python/twine binaries, timeouts, and distribution formats
//   - Webhooks: ordered downstream rebuild triggers
//   - Workflow: webhook request timeout
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Index         Index         `toml:"index"`
	Packaging     Packaging     `toml:"packaging"`
	Webhooks      []Webhook     `toml:"webhook"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/capstan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/capstan/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("capstan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the staging and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PypircPath returns the location of the scoped credentials file under the
// staging directory. The file only exists for the duration of a release run.
func (c *Config) PypircPath() string {
	return filepath.Join(c.Paths.StagingDir, "pypirc")
}

// DistDir returns the directory build artifacts are written to.
func (c *Config) DistDir() string {
	return filepath.Join(c.Paths.StagingDir, "dist")
}

// EnabledWebhooks returns the trigger list with disabled entries removed,
// preserving configuration order.
func (c *Config) EnabledWebhooks() []Webhook {
	out := make([]Webhook, 0, len(c.Webhooks))
	for _, hook := range c.Webhooks {
		if hook.Disabled {
			continue
		}
		out = append(out, hook)
	}
	return out
}

// ValidateCredentials ensures index credentials are present. Called by the
// release path only; read-only commands never require secrets.
func (c *Config) ValidateCredentials() error {
	if strings.TrimSpace(c.Index.Username) == "" {
		return errors.New("index.username is required (set PYPI_USERNAME or edit the config file)")
	}
	if strings.TrimSpace(c.Index.Password) == "" {
		return errors.New("index.password is required (set PYPI_PASSWORD or edit the config file)")
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
