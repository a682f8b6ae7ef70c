package packaging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Project identifies the package being released.
type Project struct {
	Name    string
	Version string
}

// Label returns a human-readable "name version" string for notifications and
// release records.
func (p Project) Label() string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "unknown"
	}
	if version := strings.TrimSpace(p.Version); version != "" {
		return name + " " + version
	}
	return name
}

type pyprojectFile struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
}

// ReadProject extracts the package name and version from pyproject.toml in
// the project root. When the file is absent the directory name stands in for
// the package name; legacy setup.py projects still release fine, they just
// produce less descriptive records.
func ReadProject(projectRoot string) (Project, error) {
	path := filepath.Join(projectRoot, "pyproject.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Project{Name: filepath.Base(projectRoot)}, nil
		}
		return Project{}, fmt.Errorf("read pyproject: %w", err)
	}

	var parsed pyprojectFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return Project{}, fmt.Errorf("parse pyproject: %w", err)
	}

	project := Project{
		Name:    strings.TrimSpace(parsed.Project.Name),
		Version: strings.TrimSpace(parsed.Project.Version),
	}
	if project.Name == "" {
		project.Name = filepath.Base(projectRoot)
	}
	return project, nil
}
