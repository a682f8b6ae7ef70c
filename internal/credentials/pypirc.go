package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Credentials holds the values written into the generated pypirc file.
type Credentials struct {
	Repository string
	UploadURL  string
	Username   string
	Password   string
}

// Validate ensures all required values are present.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Repository) == "" {
		return errors.New("repository name required")
	}
	if strings.TrimSpace(c.UploadURL) == "" {
		return errors.New("upload url required")
	}
	if strings.TrimSpace(c.Username) == "" {
		return errors.New("username required")
	}
	if strings.TrimSpace(c.Password) == "" {
		return errors.New("password required")
	}
	return nil
}

// Render produces the pypirc file content. Secret values are written
// literally; no placeholder text or escaping is applied.
func Render(creds Credentials) string {
	var builder strings.Builder
	builder.WriteString("[distutils]\n")
	builder.WriteString("index-servers =\n")
	fmt.Fprintf(&builder, "    %s\n\n", creds.Repository)
	fmt.Fprintf(&builder, "[%s]\n", creds.Repository)
	fmt.Fprintf(&builder, "repository = %s\n", creds.UploadURL)
	fmt.Fprintf(&builder, "username = %s\n", creds.Username)
	fmt.Fprintf(&builder, "password = %s\n", creds.Password)
	return builder.String()
}

// WriteScoped writes the credentials file at path with owner-only permissions
// and returns a cleanup that removes it. It refuses to clobber an existing
// file so a user's real pypirc can never be overwritten by a stale staging
// path. Callers must invoke cleanup on every exit path.
func WriteScoped(path string, creds Credentials) (func() error, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("credentials: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("credentials file already exists at %s; remove it before releasing", path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("check credentials path: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create credentials directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(Render(creds)), 0o600); err != nil {
		return nil, fmt.Errorf("write credentials file: %w", err)
	}

	cleanup := func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove credentials file: %w", err)
		}
		return nil
	}
	return cleanup, nil
}
