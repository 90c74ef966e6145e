// Where: cmd/eda/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"io"
	"os"

	"github.com/photo-album/eda-app/internal/awsclient"
	"github.com/photo-album/eda-app/internal/commands"
	"github.com/photo-album/eda-app/internal/compose"
	"github.com/photo-album/eda-app/internal/constants"
	"github.com/photo-album/eda-app/internal/envutil"
	"github.com/photo-album/eda-app/internal/interaction"
	"github.com/photo-album/eda-app/internal/provisioner"
)

var (
	getwd           = os.Getwd
	newDockerClient = compose.NewDockerClient
)

// buildDependencies constructs all runtime dependencies required by the CLI.
// Returns the dependencies, a closer for the Docker client, and any
// initialization error.
func buildDependencies() (commands.Dependencies, io.Closer, error) {
	projectDir, err := getwd()
	if err != nil {
		return commands.Dependencies{}, nil, err
	}

	client, err := newDockerClient()
	if err != nil {
		return commands.Dependencies{}, nil, err
	}

	deps := commands.Dependencies{
		Out:        os.Stdout,
		ProjectDir: projectDir,
		Prompter:   interaction.HuhPrompter{},
		NewProvisioner: func(endpoint string) commands.Provisioner {
			return provisioner.New(client, awsclient.Options{
				Region:   envutil.GetenvDefault(constants.EnvAWSRegion, awsclient.DefaultRegion),
				Endpoint: endpoint,
			})
		},
		Emulator: commands.EmulatorDeps{
			Runner: compose.ExecRunner{},
			Docker: client,
		},
	}
	return deps, asCloser(client), nil
}

// asCloser attempts to cast the Docker client to an io.Closer.
// Returns nil if the client does not implement the Closer interface.
func asCloser(client compose.DockerClient) io.Closer {
	if closer, ok := client.(io.Closer); ok {
		return closer
	}
	return nil
}
