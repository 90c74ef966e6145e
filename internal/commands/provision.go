// Where: internal/commands/provision.go
// What: provision and teardown commands.
// Why: Bring the emulator to the declared state and back.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/photo-album/eda-app/internal/interaction"
)

type (
	ProvisionCmd struct{}
	TeardownCmd  struct {
		Yes bool `short:"y" help:"Do not ask for confirmation"`
	}
)

func runProvision(cli CLI, deps Dependencies, out io.Writer) int {
	s, _, err := loadStack(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	p, err := newProvisioner(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	ui := console(out)
	ui.Header("🚀", fmt.Sprintf("Provisioning %s", s.Name))
	if err := p.Apply(context.Background(), s, projectName(cli)); err != nil {
		return exitWithError(out, err)
	}
	ui.Success("Provisioning complete")
	return 0
}

func runTeardown(cli CLI, deps Dependencies, out io.Writer) int {
	s, _, err := loadStack(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	ok, err := interaction.ConfirmOrRefuse(
		deps.Prompter,
		cli.Teardown.Yes,
		fmt.Sprintf("Delete all %s resources from the emulator?", s.Name),
		"Bucket objects, queued messages, and table items are lost.",
	)
	if err != nil {
		if errors.Is(err, interaction.ErrNotInteractive) {
			return exitWithError(out, err)
		}
		return exitWithError(out, fmt.Errorf("confirmation: %w", err))
	}
	if !ok {
		console(out).Info("Teardown cancelled")
		return 0
	}

	p, err := newProvisioner(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	ui := console(out)
	ui.Header("🧨", fmt.Sprintf("Tearing down %s", s.Name))
	if err := p.Teardown(context.Background(), s, projectName(cli)); err != nil {
		return exitWithError(out, err)
	}
	ui.Success("Teardown complete")
	return 0
}
