// Where: internal/commands/app_test.go
// What: Tests for CLI run behavior.
// Why: Ensure command routing and exit codes remain stable.
package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/photo-album/eda-app/internal/interaction"
	"github.com/photo-album/eda-app/internal/provisioner"
	"github.com/photo-album/eda-app/internal/stack"
)

type fakeProvisioner struct {
	endpoint  string
	applied   []string
	tornDown  []string
	uploads   []string
	depths    []provisioner.QueueDepth
	applyErr  error
	uploadErr error
}

func (f *fakeProvisioner) Apply(_ context.Context, s *stack.Stack, project string) error {
	f.applied = append(f.applied, s.Name+"@"+project)
	return f.applyErr
}

func (f *fakeProvisioner) Teardown(_ context.Context, s *stack.Stack, project string) error {
	f.tornDown = append(f.tornDown, s.Name+"@"+project)
	return nil
}

func (f *fakeProvisioner) Inspect(_ context.Context, _ *stack.Stack, _ string) ([]provisioner.QueueDepth, error) {
	return f.depths, nil
}

func (f *fakeProvisioner) Upload(_ context.Context, _ *stack.Stack, _, bucketRef, key, contentType string, body io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, _ := io.ReadAll(body)
	f.uploads = append(f.uploads, bucketRef+"|"+key+"|"+contentType+"|"+string(data))
	return "images", nil
}

type mockPrompter struct {
	answer bool
	err    error
	titles []string
}

func (m *mockPrompter) Confirm(title, _ string) (bool, error) {
	m.titles = append(m.titles, title)
	return m.answer, m.err
}

type harness struct {
	out         *bytes.Buffer
	dir         string
	provisioner *fakeProvisioner
	prompter    *mockPrompter
	deps        Dependencies
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{"EDA_ENDPOINT", "EDA_COMPOSE_PROJECT", "ENV_PREFIX", "SES_EMAIL_FROM", "SES_EMAIL_TO", "SES_REGION"} {
		t.Setenv(key, "")
	}
	h := &harness{
		out:         &bytes.Buffer{},
		dir:         t.TempDir(),
		provisioner: &fakeProvisioner{},
		prompter:    &mockPrompter{},
	}
	h.deps = Dependencies{
		Out:        h.out,
		ProjectDir: h.dir,
		Prompter:   h.prompter,
		NewProvisioner: func(endpoint string) Provisioner {
			h.provisioner.endpoint = endpoint
			return h.provisioner
		},
		NewKey: func() string { return "fixed" },
	}
	return h
}

func (h *harness) run(args ...string) int {
	return Run(args, h.deps)
}

func (h *harness) writeProjectFile(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(h.dir, "eda.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write project file: %v", err)
	}
}

func withTerminal(t *testing.T, tty bool) {
	t.Helper()
	orig := interaction.IsTerminal
	interaction.IsTerminal = func(*os.File) bool { return tty }
	t.Cleanup(func() { interaction.IsTerminal = orig })
}

func TestRunNoArgsPrintsUsage(t *testing.T) {
	h := newHarness(t)
	if code := h.run(); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(h.out.String(), "eda synth") {
		t.Fatalf("unexpected output: %q", h.out.String())
	}
}

func TestRunVersion(t *testing.T) {
	h := newHarness(t)
	if code := h.run("version"); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.HasPrefix(h.out.String(), "eda ") {
		t.Fatalf("unexpected output: %q", h.out.String())
	}
}

func TestRunUnknownFlag(t *testing.T) {
	h := newHarness(t)
	if code := h.run("synth", "--bogus"); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunHelpDoesNotFail(t *testing.T) {
	h := newHarness(t)
	if code := h.run("--help"); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(h.out.String(), "provision") {
		t.Fatalf("expected help output, got %q", h.out.String())
	}
}

func TestRunSynthToStdout(t *testing.T) {
	h := newHarness(t)
	if code := h.run("synth"); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, h.out.String())
	}
	out := h.out.String()
	if !strings.Contains(out, "Transform: AWS::Serverless-2016-10-31") {
		t.Fatalf("expected SAM template, got %q", out)
	}
}

func TestRunSynthToFile(t *testing.T) {
	h := newHarness(t)
	if code := h.run("synth", "-o", "build/template.yaml"); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, h.out.String())
	}
	data, err := os.ReadFile(filepath.Join(h.dir, "build", "template.yaml"))
	if err != nil {
		t.Fatalf("expected template file: %v", err)
	}
	if !strings.Contains(string(data), "AWS::SQS::Queue") {
		t.Fatalf("unexpected template content")
	}
	if !strings.Contains(h.out.String(), "Template written to") {
		t.Fatalf("unexpected output: %q", h.out.String())
	}
}

func TestRunSynthUsesMailEnv(t *testing.T) {
	h := newHarness(t)
	t.Setenv("SES_EMAIL_FROM", "album@example.com")
	if code := h.run("synth"); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(h.out.String(), "album@example.com") {
		t.Fatalf("expected sender default in parameters")
	}
}

func TestRunValidateProjectFile(t *testing.T) {
	h := newHarness(t)
	h.writeProjectFile(t, "queues:\n  bad_orders:\n    retention_period: 1h\n")
	if code := h.run("validate"); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, h.out.String())
	}
	if !strings.Contains(h.out.String(), "eda.yaml") {
		t.Fatalf("expected project file in output, got %q", h.out.String())
	}
}

func TestRunValidateRejectsInvalidStack(t *testing.T) {
	h := newHarness(t)
	h.writeProjectFile(t, "event_source:\n  max_concurrency: 1\n")
	if code := h.run("validate"); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(h.out.String(), "max concurrency") {
		t.Fatalf("unexpected output: %q", h.out.String())
	}
}

func TestRunValidateFile(t *testing.T) {
	h := newHarness(t)
	good := filepath.Join(h.dir, "good.yaml")
	if code := h.run("synth", "-o", good); code != 0 {
		t.Fatalf("synth failed: %s", h.out.String())
	}
	if code := h.run("validate", good); code != 0 {
		t.Fatalf("expected valid template, got: %s", h.out.String())
	}

	bad := filepath.Join(h.dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("Resources: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if code := h.run("validate", bad); code != 1 {
		t.Fatalf("expected invalid template to fail")
	}
}

func TestRunGraph(t *testing.T) {
	h := newHarness(t)
	if code := h.run("graph"); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, h.out.String())
	}
	out := h.out.String()
	for _, want := range []string{
		"images --(s3:ObjectCreated:*)--> NewImageTopic",
		"ordersqueue --(dead-letter)--> badordersq",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Queues") {
		t.Fatalf("queue depths must only be shown with --live")
	}
}

func TestRunGraphLive(t *testing.T) {
	h := newHarness(t)
	h.provisioner.depths = []provisioner.QueueDepth{
		{Name: "ordersqueue", Visible: 3, InFlight: 1},
		{Name: "badordersq", Missing: true},
	}
	if code := h.run("--endpoint", "http://localhost:4566", "graph", "--live"); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, h.out.String())
	}
	out := h.out.String()
	if !strings.Contains(out, "3 visible, 1 in flight") || !strings.Contains(out, "not provisioned") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if h.provisioner.endpoint != "http://localhost:4566" {
		t.Fatalf("expected endpoint to be forwarded, got %q", h.provisioner.endpoint)
	}
}

func TestRunProvision(t *testing.T) {
	h := newHarness(t)
	if code := h.run("--project", "demo", "provision"); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, h.out.String())
	}
	if len(h.provisioner.applied) != 1 || h.provisioner.applied[0] != "EDAAppStack@demo" {
		t.Fatalf("unexpected apply calls: %v", h.provisioner.applied)
	}
	if !strings.Contains(h.out.String(), "Provisioning complete") {
		t.Fatalf("unexpected output: %q", h.out.String())
	}
}

func TestRunProvisionFailure(t *testing.T) {
	h := newHarness(t)
	h.provisioner.applyErr = errors.New("1 resource(s) failed to provision")
	if code := h.run("provision"); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunTeardownRequiresTerminal(t *testing.T) {
	withTerminal(t, false)
	h := newHarness(t)
	if code := h.run("teardown"); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if len(h.provisioner.tornDown) != 0 {
		t.Fatalf("teardown must not run without confirmation")
	}
	if !strings.Contains(h.out.String(), "--yes") {
		t.Fatalf("expected hint, got %q", h.out.String())
	}
}

func TestRunTeardownConfirm(t *testing.T) {
	withTerminal(t, true)
	h := newHarness(t)
	h.prompter.answer = false
	if code := h.run("teardown"); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if len(h.provisioner.tornDown) != 0 || !strings.Contains(h.out.String(), "cancelled") {
		t.Fatalf("expected cancellation, got %q", h.out.String())
	}

	h.prompter.answer = true
	if code := h.run("teardown"); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if len(h.provisioner.tornDown) != 1 {
		t.Fatalf("expected teardown after confirmation")
	}
}

func TestRunTeardownYes(t *testing.T) {
	withTerminal(t, false)
	h := newHarness(t)
	if code := h.run("teardown", "--yes"); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, h.out.String())
	}
	if len(h.prompter.titles) != 0 {
		t.Fatalf("prompter must not be called with --yes")
	}
	if len(h.provisioner.tornDown) != 1 {
		t.Fatalf("expected teardown")
	}
}

func TestRunUploadGeneratesKey(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(h.dir, "Cat.PNG")
	if err := os.WriteFile(file, []byte("img"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if code := h.run("upload", file); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, h.out.String())
	}
	if len(h.provisioner.uploads) != 1 || h.provisioner.uploads[0] != "|fixed.png|image/png|img" {
		t.Fatalf("unexpected uploads: %v", h.provisioner.uploads)
	}
	if !strings.Contains(h.out.String(), "Uploaded s3://images/fixed.png") {
		t.Fatalf("unexpected output: %q", h.out.String())
	}
}

func TestRunUploadWarnsForRejectedTypes(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(h.dir, "notes.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if code := h.run("upload", file, "--key", "a/b.txt"); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(h.out.String(), "dead-lettered") {
		t.Fatalf("expected warning, got %q", h.out.String())
	}
	if !strings.Contains(h.provisioner.uploads[0], "|a/b.txt|") {
		t.Fatalf("expected explicit key, got %v", h.provisioner.uploads)
	}
}

type fakeDocker struct {
	containers []container.Summary
	removed    []string
}

func (f *fakeDocker) ContainerList(_ context.Context, _ container.ListOptions) ([]container.Summary, error) {
	return append([]container.Summary(nil), f.containers...), nil
}

func (f *fakeDocker) ContainerStop(_ context.Context, _ string, _ container.StopOptions) error {
	return nil
}

func (f *fakeDocker) ContainerRemove(_ context.Context, id string, _ container.RemoveOptions) error {
	f.removed = append(f.removed, id)
	return nil
}

func TestRunEmulatorStatusAndDown(t *testing.T) {
	h := newHarness(t)
	docker := &fakeDocker{containers: []container.Summary{{
		ID:    "c1",
		State: "running",
		Labels: map[string]string{
			"com.docker.compose.project": "eda-app",
			"com.docker.compose.service": "emulator",
		},
		Ports: []container.Port{{PrivatePort: 4566, PublicPort: 4566}},
	}}}
	h.deps.Emulator.Docker = docker

	if code := h.run("emulator", "status"); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, h.out.String())
	}
	if !strings.Contains(h.out.String(), "running (4566->4566)") {
		t.Fatalf("unexpected status output: %q", h.out.String())
	}

	if code := h.run("emulator", "down"); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if len(docker.removed) != 1 {
		t.Fatalf("expected container removal")
	}
}

type recordingRunner struct {
	args []string
}

func (r *recordingRunner) Run(_ context.Context, _ string, _ string, args ...string) error {
	r.args = args
	return nil
}

func (r *recordingRunner) RunQuiet(ctx context.Context, dir, name string, args ...string) error {
	return r.Run(ctx, dir, name, args...)
}

func TestRunEmulatorUp(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(filepath.Join(h.dir, "docker-compose.yml"), []byte("services: {}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	runner := &recordingRunner{}
	h.deps.Emulator.Runner = runner

	if code := h.run("emulator", "up"); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, h.out.String())
	}
	joined := strings.Join(runner.args, " ")
	if !strings.Contains(joined, "--project-name eda-app") || !strings.HasSuffix(joined, "up -d --wait") {
		t.Fatalf("unexpected compose args: %s", joined)
	}
}

func TestRunCompletionBash(t *testing.T) {
	h := newHarness(t)
	if code := h.run("completion", "bash"); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	out := h.out.String()
	if !strings.Contains(out, "complete -F _eda_completion eda") {
		t.Fatalf("unexpected script: %q", out)
	}
	if !strings.Contains(out, "up down status") {
		t.Fatalf("expected emulator subcommands, got %q", out)
	}
}

func TestCommandName(t *testing.T) {
	cases := map[string][]string{
		"provision": {"--endpoint", "http://x", "provision"},
		"synth":     {"-c", "eda.yaml", "synth", "-o", "t.yaml"},
		"":          {"--env-file", ".env"},
	}
	for want, args := range cases {
		if got := CommandName(args); got != want {
			t.Fatalf("CommandName(%v) = %q, want %q", args, got, want)
		}
	}
	if NeedsDocker([]string{"synth"}) || !NeedsDocker([]string{"emulator", "status"}) {
		t.Fatalf("unexpected NeedsDocker result")
	}
}
