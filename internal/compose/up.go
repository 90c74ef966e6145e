// Where: internal/compose/up.go
// What: docker compose invocation for the local emulator.
// Why: Starting services needs the compose CLI; the SDK has no compose support.
package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultComposeFile is looked up in the project directory.
const DefaultComposeFile = "docker-compose.yml"

// UpOptions configures docker compose up.
type UpOptions struct {
	RootDir string
	Project string
	File    string
	EnvFile string
	Detach  bool
	Quiet   bool
}

// UpProject runs docker compose up for the emulator project.
func UpProject(ctx context.Context, runner CommandRunner, opts UpOptions) error {
	if runner == nil {
		return fmt.Errorf("command runner is nil")
	}
	if strings.TrimSpace(opts.Project) == "" {
		return fmt.Errorf("compose project is required")
	}
	file, err := ResolveComposeFile(opts.RootDir, opts.File)
	if err != nil {
		return err
	}

	args := []string{"compose", "--project-name", opts.Project, "-f", file}
	if opts.EnvFile != "" {
		args = append(args, "--env-file", opts.EnvFile)
	}
	args = append(args, "up")
	if opts.Detach {
		args = append(args, "-d", "--wait")
	}
	if opts.Quiet {
		return runner.RunQuiet(ctx, opts.RootDir, "docker", args...)
	}
	return runner.Run(ctx, opts.RootDir, "docker", args...)
}

// ResolveComposeFile returns an absolute path to the compose file, relative
// paths being resolved against rootDir.
func ResolveComposeFile(rootDir, file string) (string, error) {
	if strings.TrimSpace(file) == "" {
		file = DefaultComposeFile
	}
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, file)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("compose file not found: %s", path)
	}
	return path, nil
}
