package commands

import (
	"fmt"

	"github.com/photo-album/eda-app/internal/config"
	"github.com/photo-album/eda-app/internal/constants"
	"github.com/photo-album/eda-app/internal/envutil"
	"github.com/photo-album/eda-app/internal/provisioner"
	"github.com/photo-album/eda-app/internal/stack"
)

// loadStack resolves the project file, applies mail settings from the
// environment, and builds the validated graph.
func loadStack(cli CLI, deps Dependencies) (*stack.Stack, string, error) {
	cfg, path, err := config.LoadStackConfig(cli.Config, deps.ProjectDir)
	if err != nil {
		return nil, path, fmt.Errorf("load project file: %w", err)
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = envutil.GetenvDefault(constants.EnvSESEmailFrom, "")
	}
	if cfg.Mail.To == "" {
		cfg.Mail.To = envutil.GetenvDefault(constants.EnvSESEmailTo, "")
	}
	if cfg.Mail.Region == "" {
		cfg.Mail.Region = envutil.GetenvDefault(constants.EnvSESRegion, "")
	}

	s := stack.Build(cfg)
	if err := s.Validate(); err != nil {
		return nil, path, err
	}
	return s, path, nil
}

func projectName(cli CLI) string {
	if cli.Project != "" {
		return cli.Project
	}
	return provisioner.DefaultProject()
}

func newProvisioner(cli CLI, deps Dependencies) (Provisioner, error) {
	if deps.NewProvisioner == nil {
		return nil, fmt.Errorf("provisioner is not configured")
	}
	p := deps.NewProvisioner(cli.Endpoint)
	if p == nil {
		return nil, fmt.Errorf("provisioner is not configured")
	}
	return p, nil
}
