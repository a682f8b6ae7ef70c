package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"capstan/internal/config"
	"capstan/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("PYPI_USERNAME", "")
	t.Setenv("PYPI_PASSWORD", "")

	cfg := testsupport.NewConfig(t, opts...)
	writeProject(t, cfg.Paths.ProjectRoot, "demo", "1.2.3")

	configPath := filepath.Join(homeDir, ".config", "capstan", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var builder strings.Builder
	fmt.Fprintf(&builder, "[paths]\nproject_root = %q\nstaging_dir = %q\nlog_dir = %q\n\n",
		cfg.Paths.ProjectRoot, cfg.Paths.StagingDir, cfg.Paths.LogDir)
	fmt.Fprintf(&builder, "[index]\nrepository = %q\nupload_url = %q\nusername = %q\npassword = %q\n\n",
		cfg.Index.Repository, cfg.Index.UploadURL, cfg.Index.Username, cfg.Index.Password)
	fmt.Fprintf(&builder, "[packaging]\npython_binary = %q\ntwine_binary = %q\nbuild_timeout = 30\nupload_timeout = 30\n\n",
		cfg.Packaging.PythonBinary, cfg.Packaging.TwineBinary)
	for _, hook := range cfg.Webhooks {
		fmt.Fprintf(&builder, "[[webhook]]\nname = %q\nurl = %q\ndisabled = %v\n\n",
			hook.Name, hook.URL, hook.Disabled)
	}
	builder.WriteString("[workflow]\nwebhook_timeout = 5\n\n[logging]\nformat = \"json\"\nlevel = \"error\"\n")

	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeProject(t *testing.T, root, name, version string) {
	t.Helper()
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir project root: %v", err)
	}
	content := fmt.Sprintf("[project]\nname = %q\nversion = %q\n", name, version)
	if err := os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write pyproject.toml: %v", err)
	}
}

// stubReleaseBinaries installs python3 and twine stand-ins on PATH. The
// python3 stub drops artifact files into the requested --outdir so the build
// stage sees real output.
func stubReleaseBinaries(t *testing.T, baseDir string) {
	t.Helper()
	binDir := filepath.Join(baseDir, "release-bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}

	python := `#!/bin/sh
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "--outdir" ]; then out="$a"; fi
  prev="$a"
done
if [ -n "$out" ]; then
  : > "$out/demo-1.2.3.tar.gz"
  : > "$out/demo-1.2.3-py3-none-any.whl"
fi
exit 0
`
	twine := "#!/bin/sh\nexit 0\n"
	if err := os.WriteFile(filepath.Join(binDir, "python3"), []byte(python), 0o755); err != nil {
		t.Fatalf("write python3 stub: %v", err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "twine"), []byte(twine), 0o755); err != nil {
		t.Fatalf("write twine stub: %v", err)
	}

	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func webhookEntry(name, url string, disabled bool) config.Webhook {
	return config.Webhook{Name: name, URL: url, Disabled: disabled}
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
