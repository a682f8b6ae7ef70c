package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"capstan/internal/config"
	"capstan/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckProjectRoot verifies the project directory exists and contains a
// pyproject.toml or setup.py.
func CheckProjectRoot(path string) Result {
	const name = "Project root"

	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}

	for _, marker := range []string{"pyproject.toml", "setup.py"} {
		if _, err := os.Stat(filepath.Join(path, marker)); err == nil {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s found)", path, marker)}
		}
	}
	return Result{Name: name, Detail: fmt.Sprintf("%s (error: no pyproject.toml or setup.py)", path)}
}

// CheckCredentials verifies index credentials are present without revealing them.
func CheckCredentials(cfg *config.Config) Result {
	const name = "Index credentials"

	if err := cfg.ValidateCredentials(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("username %q set, password set", cfg.Index.Username)}
}

// CheckSystemDeps evaluates all external binaries for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Python",
			Command:     cfg.Packaging.PythonBinary,
			Description: "Required for building distributions",
		},
		{
			Name:        "Twine",
			Command:     cfg.Packaging.TwineBinary,
			Description: "Required for uploading to the package index",
		},
	}
	return deps.CheckBinaries(requirements)
}

func webhookSummary(cfg *config.Config) string {
	hooks := cfg.EnabledWebhooks()
	names := make([]string, 0, len(hooks))
	for _, hook := range hooks {
		names = append(names, hook.Name)
	}
	return fmt.Sprintf("%d configured: %s", len(hooks), strings.Join(names, ", "))
}
