// Where: internal/provisioner/provisioner.go
// What: Applies the stack's data-plane resources to a local AWS emulator.
// Why: Exercise the pipeline locally without a CloudFormation deployment.
package provisioner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/photo-album/eda-app/internal/awsclient"
	"github.com/photo-album/eda-app/internal/compose"
	"github.com/photo-album/eda-app/internal/constants"
	"github.com/photo-album/eda-app/internal/envutil"
	"github.com/photo-album/eda-app/internal/meta"
	"github.com/photo-album/eda-app/internal/stack"
)

const (
	defaultEmulatorPort = 4566
	emulatorService     = "emulator"
)

type Runner struct {
	Out          io.Writer
	Clients      ClientFactory
	PortResolver PortResolver
	// Endpoint skips port discovery when set.
	Endpoint string
}

// New returns a Runner that discovers the emulator through client.
func New(client compose.DockerClient, opts awsclient.Options) *Runner {
	return &Runner{
		Out:          os.Stdout,
		Clients:      awsClientFactory{Options: opts},
		PortResolver: dockerPortResolver{Client: client},
		Endpoint:     opts.Endpoint,
	}
}

// DefaultProject is the compose project used when none is configured.
func DefaultProject() string {
	if project := envutil.GetHostEnv(constants.HostSuffixProject); project != "" {
		return project
	}
	return meta.Slug
}

// ResolveEndpoint returns the emulator base URL: the explicit endpoint,
// then the port from EDA_PORT_EMULATOR, the compose project, or the default.
func (r *Runner) ResolveEndpoint(ctx context.Context, project string) (string, error) {
	if r.Endpoint != "" {
		return r.Endpoint, nil
	}
	if project == "" {
		project = DefaultProject()
	}
	port, ok := resolvePort(
		ctx,
		envutil.HostEnvKey(constants.HostSuffixPortEmulator),
		defaultEmulatorPort,
		PortRequest{Project: project, Service: emulatorService, ContainerPort: defaultEmulatorPort},
		r.PortResolver,
	)
	if !ok {
		return "", fmt.Errorf("emulator port not resolved for project %s", project)
	}
	return fmt.Sprintf("http://localhost:%d", port), nil
}

func (r *Runner) session(ctx context.Context, project string) (Clients, io.Writer, error) {
	if r == nil {
		return Clients{}, nil, fmt.Errorf("provisioner is nil")
	}
	if r.Clients == nil {
		return Clients{}, nil, fmt.Errorf("client factory not configured")
	}
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	endpoint, err := r.ResolveEndpoint(ctx, project)
	if err != nil {
		return Clients{}, nil, err
	}
	clients, err := r.Clients.Clients(ctx, endpoint)
	if err != nil {
		return Clients{}, nil, err
	}
	return clients, out, nil
}

// Apply creates every table, topic, queue, and bucket declared by s, then
// wires subscriptions and bucket notifications. Existing resources are kept.
// A failure on one resource is reported and the rest still run.
func (r *Runner) Apply(ctx context.Context, s *stack.Stack, project string) error {
	if s == nil {
		return fmt.Errorf("stack is nil")
	}
	clients, out, err := r.session(ctx, project)
	if err != nil {
		return err
	}

	p := &applier{clients: clients, out: out, stack: s, state: newState()}
	p.tables(ctx)
	p.topics(ctx)
	p.queues(ctx)
	p.buckets(ctx)
	p.subscriptions(ctx)
	p.notifications(ctx)

	if p.failures > 0 {
		return fmt.Errorf("%d resource(s) failed to provision", p.failures)
	}
	return nil
}

// Teardown deletes the resources Apply creates. Missing resources are skipped.
func (r *Runner) Teardown(ctx context.Context, s *stack.Stack, project string) error {
	if s == nil {
		return fmt.Errorf("stack is nil")
	}
	clients, out, err := r.session(ctx, project)
	if err != nil {
		return err
	}

	p := &applier{clients: clients, out: out, stack: s, state: newState()}
	p.deleteBuckets(ctx)
	p.deleteQueues(ctx)
	p.deleteTopics(ctx)
	p.deleteTables(ctx)

	if p.failures > 0 {
		return fmt.Errorf("%d resource(s) failed to delete", p.failures)
	}
	return nil
}

// state carries physical identifiers between provisioning steps.
type state struct {
	topicARNs map[string]string
	queueURLs map[string]string
	queueARNs map[string]string
}

func newState() *state {
	return &state{
		topicARNs: map[string]string{},
		queueURLs: map[string]string{},
		queueARNs: map[string]string{},
	}
}

type applier struct {
	clients  Clients
	out      io.Writer
	stack    *stack.Stack
	state    *state
	failures int
}

func (p *applier) fail(format string, args ...any) {
	p.failures++
	fmt.Fprintf(p.out, "❌ "+format+"\n", args...)
}
