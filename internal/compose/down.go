// Where: internal/compose/down.go
// What: Down helpers using Docker SDK.
// Why: Stop and remove containers for a compose project.
package compose

import (
	"context"

	"github.com/docker/docker/api/types/container"
)

// DownProject stops and removes all containers belonging to the specified
// Docker Compose project. Optionally removes volumes if removeVolumes is true.
// It returns the number of containers removed.
func DownProject(ctx context.Context, client DockerClient, project string, removeVolumes bool) (int, error) {
	containers, err := listProject(ctx, client, project)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, ctr := range containers {
		if ctr.State == "running" {
			if err := client.ContainerStop(ctx, ctr.ID, container.StopOptions{}); err != nil {
				return removed, err
			}
		}
		if err := client.ContainerRemove(ctx, ctr.ID, container.RemoveOptions{RemoveVolumes: removeVolumes}); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
