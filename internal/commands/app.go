// Where: internal/commands/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/photo-album/eda-app/internal/compose"
	"github.com/photo-album/eda-app/internal/interaction"
	"github.com/photo-album/eda-app/internal/meta"
	"github.com/photo-album/eda-app/internal/provisioner"
	"github.com/photo-album/eda-app/internal/stack"
)

// Provisioner applies the stack to a local emulator.
type Provisioner interface {
	Apply(ctx context.Context, s *stack.Stack, project string) error
	Teardown(ctx context.Context, s *stack.Stack, project string) error
	Inspect(ctx context.Context, s *stack.Stack, project string) ([]provisioner.QueueDepth, error)
	Upload(ctx context.Context, s *stack.Stack, project, bucketRef, key, contentType string, body io.Reader) (string, error)
}

// Dependencies holds all injected dependencies required for CLI command execution.
type Dependencies struct {
	Out        io.Writer
	ProjectDir string
	Prompter   interaction.Prompter
	// NewProvisioner builds a provisioner; endpoint is empty unless --endpoint is set.
	NewProvisioner func(endpoint string) Provisioner
	Emulator       EmulatorDeps
	// NewKey generates object keys for uploads without --key.
	NewKey func() string
}

type EmulatorDeps struct {
	Runner compose.CommandRunner
	Docker compose.DockerClient
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	Config   string `short:"c" help:"Path to the project file (default: nearest eda.yaml)"`
	EnvFile  string `name:"env-file" help:"Path to .env file"`
	Endpoint string `help:"Emulator endpoint URL (skips port discovery)" env:"EDA_ENDPOINT"`
	Project  string `help:"Docker Compose project of the emulator" env:"EDA_COMPOSE_PROJECT"`

	Synth      SynthCmd      `cmd:"" help:"Render the SAM template"`
	Validate   ValidateCmd   `cmd:"" help:"Validate the stack or an existing template"`
	Graph      GraphCmd      `cmd:"" help:"Show resources and event routing"`
	Provision  ProvisionCmd  `cmd:"" help:"Create the stack resources on the local emulator"`
	Teardown   TeardownCmd   `cmd:"" help:"Delete the stack resources from the local emulator"`
	Upload     UploadCmd     `cmd:"" help:"Upload an image to trigger the pipeline"`
	Emulator   EmulatorCmd   `cmd:"" help:"Manage the local emulator containers"`
	Completion CompletionCmd `cmd:"" help:"Generate shell completion script"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
		deps.Out = out
	}
	if deps.ProjectDir == "" {
		if wd, err := os.Getwd(); err == nil {
			deps.ProjectDir = wd
		}
	}

	if len(args) == 0 {
		return runNoArgs(out)
	}

	cli := CLI{}
	exited, exitCode := false, 0
	parser, err := kong.New(&cli,
		kong.Name(meta.AppName),
		kong.Description("Photo album event pipeline tooling"),
		kong.Writers(out, out),
		kong.Exit(func(code int) {
			exited, exitCode = true, code
		}),
	)
	if err != nil {
		return exitWithError(out, err)
	}

	kctx, err := parser.Parse(args)
	if exited {
		// --help was printed by kong.
		return exitCode
	}
	if err != nil {
		return exitWithError(out, err)
	}

	loadEnvFile(cli.EnvFile, deps.ProjectDir, out)

	command := kctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps, out); handled {
		return exitCode
	}

	console(out).Warn("unknown command")
	return 1
}

// loadEnvFile loads an explicit env file, or .env in the project directory.
// Values already present in the environment win.
func loadEnvFile(path, projectDir string, out io.Writer) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			console(out).Warn(fmt.Sprintf("failed to load env file %s: %v", path, err))
		}
		return
	}
	candidate := ".env"
	if projectDir != "" {
		candidate = projectDir + string(os.PathSeparator) + ".env"
	}
	if _, err := os.Stat(candidate); err == nil {
		if err := godotenv.Load(candidate); err != nil {
			console(out).Warn(fmt.Sprintf("failed to load .env: %v", err))
		}
	}
}

type commandHandler func(CLI, Dependencies, io.Writer) int

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"synth":           runSynth,
		"validate":        runValidate,
		"validate <file>": runValidate,
		"graph":           runGraph,
		"provision":       runProvision,
		"teardown":        runTeardown,
		"upload <file>":   runUpload,
		"emulator up":     runEmulatorUp,
		"emulator down":   runEmulatorDown,
		"emulator status": runEmulatorStatus,
		"completion bash": func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionBash(cli, out) },
		"completion zsh":  func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionZsh(cli, out) },
		"completion fish": func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionFish(cli, out) },
		"version":         func(_ CLI, _ Dependencies, out io.Writer) int { return runVersion(out) },
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps, out), true
	}
	return 1, false
}

// commandName extracts the first non-flag argument from the command line.
// Recognizes and skips known flag pairs.
func commandName(args []string) string {
	skipNext := false
	for _, arg := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(arg, "-") {
			switch arg {
			case "-c", "--config", "--env-file", "--endpoint", "--project":
				skipNext = true
			}
			continue
		}
		return arg
	}
	return ""
}

// CommandName exposes command parsing for wiring decisions.
func CommandName(args []string) string {
	return commandName(args)
}

// NeedsDocker reports whether the command talks to the Docker daemon.
func NeedsDocker(args []string) bool {
	switch commandName(args) {
	case "provision", "teardown", "upload", "graph", "emulator":
		return true
	default:
		return false
	}
}

func runNoArgs(out io.Writer) int {
	ui := console(out)
	ui.Info("Usage:")
	ui.ItemPlain("eda synth [-o template.yaml]")
	ui.ItemPlain("eda emulator up && eda provision")
	ui.ItemPlain("eda upload ./cat.png")
	ui.Info("Try: eda --help")
	return 0
}
