// Where: internal/provisioner/ports.go
// What: Port resolution for the local emulator.
// Why: Discover dynamic ports when Docker Compose assigns them.
package provisioner

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/photo-album/eda-app/internal/compose"
)

type PortRequest struct {
	Project       string
	Service       string
	ContainerPort int
}

type PortResolver interface {
	Resolve(ctx context.Context, request PortRequest) (int, error)
}

type dockerPortResolver struct {
	Client compose.DockerClient
}

func (r dockerPortResolver) Resolve(ctx context.Context, request PortRequest) (int, error) {
	if r.Client == nil {
		return 0, fmt.Errorf("docker client is nil")
	}
	return compose.PublishedPort(ctx, r.Client, request.Project, request.Service, request.ContainerPort)
}

// resolvePort prefers a positive port in envVar. A zero value forces
// discovery; unset falls back to discovery and then defaultPort.
func resolvePort(
	ctx context.Context,
	envVar string,
	defaultPort int,
	request PortRequest,
	resolver PortResolver,
) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(envVar))
	if raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			if port > 0 {
				return port, true
			}
			if resolver != nil {
				if resolved, err := resolver.Resolve(ctx, request); err == nil && resolved > 0 {
					return resolved, true
				}
			}
			return 0, false
		}
	}

	if resolver != nil {
		if resolved, err := resolver.Resolve(ctx, request); err == nil && resolved > 0 {
			return resolved, true
		}
	}
	if defaultPort > 0 {
		return defaultPort, true
	}
	return 0, false
}
