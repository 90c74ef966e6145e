// Where: internal/commands/emulator.go
// What: emulator up/down/status commands.
// Why: Run the AWS emulator the provisioner targets.
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/photo-album/eda-app/internal/compose"
)

type (
	EmulatorCmd struct {
		Up     EmulatorUpCmd     `cmd:"" help:"Start the emulator with docker compose"`
		Down   EmulatorDownCmd   `cmd:"" help:"Stop and remove the emulator containers"`
		Status EmulatorStatusCmd `cmd:"" help:"Show emulator containers and ports"`
	}
	EmulatorUpCmd struct {
		File       string `short:"f" help:"Compose file (default: docker-compose.yml in the project directory)"`
		Foreground bool   `help:"Stay attached instead of waiting for healthy containers"`
	}
	EmulatorDownCmd struct {
		Volumes bool `short:"v" help:"Also remove anonymous volumes"`
	}
	EmulatorStatusCmd struct{}
)

func runEmulatorUp(cli CLI, deps Dependencies, out io.Writer) int {
	runner := deps.Emulator.Runner
	if runner == nil {
		runner = compose.ExecRunner{}
	}
	project := projectName(cli)
	console(out).Info(fmt.Sprintf("Starting emulator (project %s)", project))
	err := compose.UpProject(context.Background(), runner, compose.UpOptions{
		RootDir: deps.ProjectDir,
		Project: project,
		File:    cli.Emulator.Up.File,
		EnvFile: cli.EnvFile,
		Detach:  !cli.Emulator.Up.Foreground,
	})
	if err != nil {
		return exitWithError(out, err)
	}
	console(out).Success("Emulator is up")
	return 0
}

func runEmulatorDown(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Emulator.Docker == nil {
		return exitWithError(out, fmt.Errorf("docker client is not configured"))
	}
	project := projectName(cli)
	removed, err := compose.DownProject(context.Background(), deps.Emulator.Docker, project, cli.Emulator.Down.Volumes)
	if err != nil {
		return exitWithError(out, err)
	}
	if removed == 0 {
		console(out).Info(fmt.Sprintf("No containers found for project %s", project))
		return 0
	}
	console(out).Success(fmt.Sprintf("Removed %d container(s) from project %s", removed, project))
	return 0
}

func runEmulatorStatus(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Emulator.Docker == nil {
		return exitWithError(out, fmt.Errorf("docker client is not configured"))
	}
	project := projectName(cli)
	containers, err := compose.ListContainersByProject(context.Background(), deps.Emulator.Docker, project)
	if err != nil {
		return exitWithError(out, err)
	}
	ui := console(out)
	if len(containers) == 0 {
		ui.Warn(fmt.Sprintf("No containers found for project %s (run: eda emulator up)", project))
		return 0
	}
	ui.Header("🐳", fmt.Sprintf("Project %s", project))
	for _, ctr := range containers {
		ports := make([]string, 0, len(ctr.Ports))
		for _, p := range ctr.Ports {
			ports = append(ports, fmt.Sprintf("%d->%d", p.Public, p.Private))
		}
		value := ctr.State
		if len(ports) > 0 {
			value += " (" + strings.Join(ports, ", ") + ")"
		}
		ui.Item(ctr.Service, value)
	}
	return 0
}
