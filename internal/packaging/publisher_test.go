package packaging_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"capstan/internal/packaging"
)

type recordedCall struct {
	dir    string
	binary string
	args   []string
}

type fakeExecutor struct {
	calls []recordedCall
	// onRun lets tests create artifacts or fail per call.
	onRun func(call recordedCall) error
}

func (f *fakeExecutor) Run(ctx context.Context, dir, binary string, args []string, onOutput func(string)) error {
	call := recordedCall{dir: dir, binary: binary, args: args}
	f.calls = append(f.calls, call)
	if f.onRun != nil {
		return f.onRun(call)
	}
	return nil
}

func writeArtifacts(t *testing.T, distDir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		t.Fatalf("mkdir dist: %v", err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(distDir, name), []byte("artifact"), 0o644); err != nil {
			t.Fatalf("write artifact: %v", err)
		}
	}
}

func TestBuildInvokesPythonBuildAndReturnsArtifacts(t *testing.T) {
	distDir := filepath.Join(t.TempDir(), "dist")
	exec := &fakeExecutor{
		onRun: func(call recordedCall) error {
			writeArtifacts(t, distDir, "pkg-1.0.0.tar.gz", "pkg-1.0.0-py3-none-any.whl", "notes.txt")
			return nil
		},
	}
	client, err := packaging.New("python3", "twine", 600, 300, packaging.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	artifacts, err := client.Build(context.Background(), "/src/pkg", distDir, true, true, nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if len(exec.calls) != 1 {
		t.Fatalf("expected 1 command, got %d", len(exec.calls))
	}
	call := exec.calls[0]
	if call.binary != "python3" {
		t.Fatalf("unexpected binary: %q", call.binary)
	}
	joined := strings.Join(call.args, " ")
	if !strings.HasPrefix(joined, "-m build --outdir "+distDir) {
		t.Fatalf("unexpected build args: %q", joined)
	}
	if !strings.HasSuffix(joined, "/src/pkg") {
		t.Fatalf("expected project root as final arg: %q", joined)
	}
	// Both formats requested: no format flag, build's default covers both.
	if strings.Contains(joined, "--sdist") || strings.Contains(joined, "--wheel") {
		t.Fatalf("expected no format flag when both formats enabled: %q", joined)
	}

	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts (txt excluded), got %v", artifacts)
	}
}

func TestBuildPassesSingleFormatFlag(t *testing.T) {
	distDir := filepath.Join(t.TempDir(), "dist")
	exec := &fakeExecutor{
		onRun: func(call recordedCall) error {
			writeArtifacts(t, distDir, "pkg-1.0.0.tar.gz")
			return nil
		},
	}
	client, _ := packaging.New("python3", "twine", 600, 300, packaging.WithExecutor(exec))

	if _, err := client.Build(context.Background(), "/src/pkg", distDir, true, false, nil); err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !strings.Contains(strings.Join(exec.calls[0].args, " "), "--sdist") {
		t.Fatalf("expected --sdist flag, got %v", exec.calls[0].args)
	}
}

func TestBuildFailsWhenNoArtifactsProduced(t *testing.T) {
	distDir := filepath.Join(t.TempDir(), "dist")
	client, _ := packaging.New("python3", "twine", 600, 300, packaging.WithExecutor(&fakeExecutor{}))

	if _, err := client.Build(context.Background(), "/src/pkg", distDir, true, true, nil); err == nil {
		t.Fatal("expected error when build produces no artifacts")
	}
}

func TestBuildPropagatesToolFailure(t *testing.T) {
	distDir := filepath.Join(t.TempDir(), "dist")
	toolErr := errors.New("exit status 1")
	exec := &fakeExecutor{onRun: func(recordedCall) error { return toolErr }}
	client, _ := packaging.New("python3", "twine", 600, 300, packaging.WithExecutor(exec))

	_, err := client.Build(context.Background(), "/src/pkg", distDir, true, true, nil)
	if err == nil || !errors.Is(err, toolErr) {
		t.Fatalf("expected wrapped tool error, got %v", err)
	}
}

func TestUploadInvokesTwineWithConfigFile(t *testing.T) {
	exec := &fakeExecutor{}
	client, _ := packaging.New("python3", "twine", 600, 300, packaging.WithExecutor(exec))

	artifacts := []string{"/staging/dist/pkg-1.0.0.tar.gz", "/staging/dist/pkg-1.0.0-py3-none-any.whl"}
	if err := client.Upload(context.Background(), "/staging/pypirc", "pypi", artifacts, nil); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if len(exec.calls) != 1 {
		t.Fatalf("expected 1 command, got %d", len(exec.calls))
	}
	call := exec.calls[0]
	if call.binary != "twine" {
		t.Fatalf("unexpected binary: %q", call.binary)
	}
	joined := strings.Join(call.args, " ")
	for _, fragment := range []string{
		"upload",
		"--non-interactive",
		"--config-file /staging/pypirc",
		"--repository pypi",
		artifacts[0],
		artifacts[1],
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("upload args missing %q: %q", fragment, joined)
		}
	}
}

func TestUploadRequiresArtifacts(t *testing.T) {
	client, _ := packaging.New("python3", "twine", 600, 300, packaging.WithExecutor(&fakeExecutor{}))
	if err := client.Upload(context.Background(), "/staging/pypirc", "pypi", nil, nil); err == nil {
		t.Fatal("expected error for empty artifact list")
	}
}
