// Where: internal/config/project.go
// What: Project file discovery for the CLI.
// Why: Let `eda` run from any subdirectory of a project.
package config

import (
	"os"
	"path/filepath"

	"github.com/photo-album/eda-app/internal/meta"
	"github.com/photo-album/eda-app/internal/stack"
)

// FindProjectFile searches upward from startDir for the project file.
// Returns "" when none exists.
func FindProjectFile(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, meta.ProjectFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadStackConfig loads explicitPath when set, otherwise the discovered
// project file, otherwise the defaults. It returns the path it used.
func LoadStackConfig(explicitPath, startDir string) (stack.Config, string, error) {
	path := explicitPath
	if path == "" {
		path = FindProjectFile(startDir)
	}
	if path == "" {
		return stack.DefaultConfig(), "", nil
	}
	if explicitPath != "" {
		if _, err := os.Stat(path); err != nil {
			return stack.Config{}, path, err
		}
	}
	cfg, err := stack.LoadConfig(path)
	return cfg, path, err
}
