// Where: cmd/eda/cli_test.go
// What: Tests for CLI dependency wiring.
// Why: Ensure buildDependencies is deterministic.
package main

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/photo-album/eda-app/internal/compose"
	"github.com/photo-album/eda-app/internal/provisioner"
)

type fakeDockerClient struct {
	closed bool
}

func (*fakeDockerClient) ContainerList(_ context.Context, _ container.ListOptions) ([]container.Summary, error) {
	return nil, nil
}

func (*fakeDockerClient) ContainerStop(_ context.Context, _ string, _ container.StopOptions) error {
	return nil
}

func (*fakeDockerClient) ContainerRemove(_ context.Context, _ string, _ container.RemoveOptions) error {
	return nil
}

func (f *fakeDockerClient) Close() error {
	f.closed = true
	return nil
}

func stubWiring(t *testing.T, wd string, wdErr error, client compose.DockerClient, clientErr error) {
	t.Helper()
	origGetwd := getwd
	origNewClient := newDockerClient
	t.Cleanup(func() {
		getwd = origGetwd
		newDockerClient = origNewClient
	})
	getwd = func() (string, error) { return wd, wdErr }
	newDockerClient = func() (compose.DockerClient, error) { return client, clientErr }
}

func TestBuildDependenciesSuccess(t *testing.T) {
	client := &fakeDockerClient{}
	stubWiring(t, "/project", nil, client, nil)

	deps, closer, err := buildDependencies()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deps.ProjectDir != "/project" {
		t.Fatalf("unexpected project dir: %s", deps.ProjectDir)
	}
	if deps.Prompter == nil || deps.Emulator.Runner == nil || deps.Emulator.Docker == nil {
		t.Fatalf("expected interactive and emulator dependencies")
	}
	p := deps.NewProvisioner("http://localhost:4566")
	runner, ok := p.(*provisioner.Runner)
	if !ok {
		t.Fatalf("expected *provisioner.Runner, got %T", p)
	}
	if runner.Endpoint != "http://localhost:4566" {
		t.Fatalf("expected endpoint override, got %q", runner.Endpoint)
	}
	if closer == nil {
		t.Fatalf("expected closer for docker client")
	}
	_ = closer.Close()
	if !client.closed {
		t.Fatalf("expected docker client to be closed")
	}
}

func TestBuildDependenciesGetwdError(t *testing.T) {
	stubWiring(t, "", errors.New("boom"), &fakeDockerClient{}, nil)
	if _, _, err := buildDependencies(); err == nil {
		t.Fatalf("expected error on getwd failure")
	}
}

func TestBuildDependenciesClientError(t *testing.T) {
	stubWiring(t, "/project", nil, nil, errors.New("no docker"))
	if _, _, err := buildDependencies(); err == nil {
		t.Fatalf("expected error on docker client failure")
	}
}
