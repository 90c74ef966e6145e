// Where: internal/compose/docker.go
// What: Docker SDK queries scoped to the emulator compose project.
// Why: Status and port discovery read container labels instead of shelling out.
package compose

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
)

const (
	ComposeProjectLabel = "com.docker.compose.project"
	ComposeServiceLabel = "com.docker.compose.service"
)

// DockerClient defines the subset of Docker SDK methods used by this package.
type DockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
}

// Container is the status view of one compose service container.
type Container struct {
	ID      string
	Name    string
	Service string
	State   string
	Ports   []Port
}

// Port is a published container port.
type Port struct {
	Private int
	Public  int
}

func listProject(ctx context.Context, client DockerClient, project string) ([]container.Summary, error) {
	if client == nil {
		return nil, fmt.Errorf("docker client is nil")
	}
	if strings.TrimSpace(project) == "" {
		return nil, fmt.Errorf("compose project is required")
	}
	labelFilter := filters.NewArgs()
	labelFilter.Add("label", fmt.Sprintf("%s=%s", ComposeProjectLabel, project))

	containers, err := client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: labelFilter,
	})
	if err != nil {
		return nil, err
	}
	out := containers[:0]
	for _, ctr := range containers {
		if ctr.Labels == nil || ctr.Labels[ComposeProjectLabel] != project {
			continue
		}
		out = append(out, ctr)
	}
	return out, nil
}

// ListContainersByProject returns all containers of the compose project,
// sorted by service name.
func ListContainersByProject(ctx context.Context, client DockerClient, project string) ([]Container, error) {
	containers, err := listProject(ctx, client, project)
	if err != nil {
		return nil, err
	}

	result := make([]Container, 0, len(containers))
	for _, ctr := range containers {
		name := ""
		if len(ctr.Names) > 0 {
			name = strings.TrimPrefix(ctr.Names[0], "/")
		}
		info := Container{
			ID:      ctr.ID,
			Name:    name,
			Service: ctr.Labels[ComposeServiceLabel],
			State:   ctr.State,
		}
		for _, port := range ctr.Ports {
			if port.PublicPort == 0 {
				continue
			}
			info.Ports = append(info.Ports, Port{Private: int(port.PrivatePort), Public: int(port.PublicPort)})
		}
		result = append(result, info)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Service < result[j].Service })
	return result, nil
}

// PublishedPort returns the host port bound to containerPort of service.
func PublishedPort(ctx context.Context, client DockerClient, project, service string, containerPort int) (int, error) {
	if strings.TrimSpace(service) == "" {
		return 0, fmt.Errorf("compose service is required")
	}
	if containerPort <= 0 {
		return 0, fmt.Errorf("container port is required")
	}
	containers, err := listProject(ctx, client, project)
	if err != nil {
		return 0, err
	}
	for _, ctr := range containers {
		if ctr.Labels[ComposeServiceLabel] != service {
			continue
		}
		for _, port := range ctr.Ports {
			if int(port.PrivatePort) == containerPort && port.PublicPort > 0 {
				return int(port.PublicPort), nil
			}
		}
	}
	return 0, fmt.Errorf("published port not found for %s:%d", service, containerPort)
}
