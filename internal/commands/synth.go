// Where: internal/commands/synth.go
// What: synth and validate commands.
// Why: Produce the deployable template and check it before deployment.
package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/photo-album/eda-app/internal/synth"
)

type (
	SynthCmd struct {
		Output string `short:"o" help:"Write the template to this file instead of stdout"`
	}
	ValidateCmd struct {
		File string `arg:"" optional:"" help:"Existing template to validate" type:"path"`
	}
)

func runSynth(cli CLI, deps Dependencies, out io.Writer) int {
	s, _, err := loadStack(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	content, err := synth.Synthesize(s)
	if err != nil {
		return exitWithError(out, err)
	}

	if cli.Synth.Output == "" {
		writeString(out, string(content))
		return 0
	}
	path := cli.Synth.Output
	if !filepath.IsAbs(path) && deps.ProjectDir != "" {
		path = filepath.Join(deps.ProjectDir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return exitWithError(out, fmt.Errorf("create output directory: %w", err))
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return exitWithError(out, fmt.Errorf("write template: %w", err))
	}
	console(out).Success(fmt.Sprintf("Template written to %s", path))
	return 0
}

func runValidate(cli CLI, deps Dependencies, out io.Writer) int {
	ui := console(out)
	if file := cli.Validate.File; file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return exitWithError(out, fmt.Errorf("read template: %w", err))
		}
		if err := synth.Validate(content); err != nil {
			return exitWithError(out, err)
		}
		ui.Success(fmt.Sprintf("%s is valid", file))
		return 0
	}

	s, path, err := loadStack(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	if _, err := synth.Synthesize(s); err != nil {
		return exitWithError(out, err)
	}
	source := path
	if source == "" {
		source = "built-in defaults"
	}
	ui.Success(fmt.Sprintf("Stack %s is valid (%s)", s.Name, source))
	return 0
}
