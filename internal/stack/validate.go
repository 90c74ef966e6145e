// Where: internal/stack/validate.go
// What: Structural checks over the resource graph.
// Why: Catch dangling references and out-of-range provider parameters before synthesis.
package stack

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Provider limits for the static parameters this stack sets.
const (
	MinMaxReceiveCount    = 1
	MaxMaxReceiveCount    = 1000
	MaxBatchingWindow     = 300 * time.Second
	MinMaxConcurrency     = 2
	MaxMaxConcurrency     = 1000
	MinMemorySize         = 128
	MaxMemorySize         = 10240
	MaxFunctionTimeout    = 900 * time.Second
	MinRetentionPeriod    = 60 * time.Second
	MaxRetentionPeriod    = 14 * 24 * time.Hour
	MaxVisibilityTimeout  = 12 * time.Hour
	MaxSQSBatchSize       = 10000
	maxBatchWithoutWindow = 10
)

// ErrInvalidStack wraps every validation failure.
var ErrInvalidStack = errors.New("invalid stack")

// Validate checks graph invariants and returns all violations joined.
func (s *Stack) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: stack is nil", ErrInvalidStack)
	}
	v := &violations{}

	if strings.TrimSpace(s.Name) == "" {
		v.add("stack name is required")
	}

	seen := map[string]struct{}{}
	for _, id := range s.LogicalIDs() {
		if strings.TrimSpace(id) == "" {
			v.add("resource with empty logical ID")
			continue
		}
		if _, ok := seen[id]; ok {
			v.add("duplicate logical ID %q", id)
		}
		seen[id] = struct{}{}
	}
	for _, p := range s.Parameters {
		if _, ok := seen[p.Name]; ok {
			v.add("parameter %q collides with a resource logical ID", p.Name)
		}
	}

	for _, t := range s.Tables {
		if t.PartitionKey.Name == "" {
			v.add("table %s: partition key is required", t.LogicalID)
		}
		switch t.PartitionKey.Type {
		case "S", "N", "B":
		default:
			v.add("table %s: unsupported key type %q", t.LogicalID, t.PartitionKey.Type)
		}
		if t.BillingMode != BillingPayPerRequest && t.BillingMode != BillingProvisioned {
			v.add("table %s: unsupported billing mode %q", t.LogicalID, t.BillingMode)
		}
	}

	for _, q := range s.Queues {
		s.validateQueue(v, q)
	}
	for _, f := range s.Functions {
		validateFunction(v, f)
	}
	for _, n := range s.Notifications {
		v.expect(s, n.BucketRef, "bucket", "notification source")
		v.expect(s, n.TopicRef, "topic", "notification target")
	}
	for _, sub := range s.Subscriptions {
		v.expect(s, sub.TopicRef, "topic", "subscription topic")
		switch sub.Protocol {
		case ProtocolLambda:
			v.expect(s, sub.EndpointRef, "function", "subscription endpoint")
		case ProtocolSQS:
			v.expect(s, sub.EndpointRef, "queue", "subscription endpoint")
		default:
			v.add("subscription to %s: unsupported protocol %q", sub.EndpointRef, sub.Protocol)
		}
	}
	for _, es := range s.EventSources {
		s.validateEventSource(v, es)
	}
	for _, g := range s.Grants {
		v.expect(s, g.FunctionRef, "function", "grant holder")
		if kind := g.ResourceKind(); kind != "" {
			v.expect(s, g.ResourceRef, kind, "grant resource")
		}
		if len(g.Actions()) == 0 {
			v.add("grant for %s: unknown kind %q", g.FunctionRef, g.Kind)
		}
	}
	for _, f := range s.Functions {
		for key, value := range f.Environment {
			if value.Ref != "" && s.Kind(value.Ref) == "" {
				v.add("function %s: env %s references unknown %q", f.LogicalID, key, value.Ref)
			}
		}
	}
	for _, o := range s.Outputs {
		if s.Kind(o.Ref) == "" {
			v.add("output %s references unknown %q", o.Name, o.Ref)
		}
	}
	return v.err()
}

func (s *Stack) validateQueue(v *violations, q Queue) {
	if q.RetentionPeriod != 0 && (q.RetentionPeriod < MinRetentionPeriod || q.RetentionPeriod > MaxRetentionPeriod) {
		v.add("queue %s: retention period %s outside %s..%s", q.LogicalID, q.RetentionPeriod, MinRetentionPeriod, MaxRetentionPeriod)
	}
	if q.VisibilityTimeout < 0 || q.VisibilityTimeout > MaxVisibilityTimeout {
		v.add("queue %s: visibility timeout %s outside 0..%s", q.LogicalID, q.VisibilityTimeout, MaxVisibilityTimeout)
	}
	if q.DeadLetter == nil {
		return
	}
	if q.DeadLetter.QueueRef == q.LogicalID {
		v.add("queue %s: dead-letter queue cannot be itself", q.LogicalID)
	}
	v.expect(s, q.DeadLetter.QueueRef, "queue", "dead-letter queue")
	if n := q.DeadLetter.MaxReceiveCount; n < MinMaxReceiveCount || n > MaxMaxReceiveCount {
		v.add("queue %s: maxReceiveCount %d outside %d..%d", q.LogicalID, n, MinMaxReceiveCount, MaxMaxReceiveCount)
	}
	if dlq := s.Queue(q.DeadLetter.QueueRef); dlq != nil && dlq.DeadLetter != nil && dlq.DeadLetter.QueueRef == q.LogicalID {
		v.add("queue %s: dead-letter cycle with %s", q.LogicalID, dlq.LogicalID)
	}
}

func validateFunction(v *violations, f Function) {
	if f.CodeURI == "" {
		v.add("function %s: code URI is required", f.LogicalID)
	}
	if f.MemorySize < MinMemorySize || f.MemorySize > MaxMemorySize {
		v.add("function %s: memory size %d outside %d..%d", f.LogicalID, f.MemorySize, MinMemorySize, MaxMemorySize)
	}
	if f.Timeout < time.Second || f.Timeout > MaxFunctionTimeout {
		v.add("function %s: timeout %s outside 1s..%s", f.LogicalID, f.Timeout, MaxFunctionTimeout)
	}
	if f.Timeout%time.Second != 0 {
		v.add("function %s: timeout %s must be whole seconds", f.LogicalID, f.Timeout)
	}
}

func (s *Stack) validateEventSource(v *violations, es EventSource) {
	v.expect(s, es.FunctionRef, "function", "event source target")
	v.expect(s, es.QueueRef, "queue", "event source queue")
	if es.MaxBatchingWindow < 0 || es.MaxBatchingWindow > MaxBatchingWindow {
		v.add("event source %s: batching window %s outside 0..%s", es.QueueRef, es.MaxBatchingWindow, MaxBatchingWindow)
	}
	if es.MaxConcurrency != 0 && (es.MaxConcurrency < MinMaxConcurrency || es.MaxConcurrency > MaxMaxConcurrency) {
		v.add("event source %s: max concurrency %d outside %d..%d", es.QueueRef, es.MaxConcurrency, MinMaxConcurrency, MaxMaxConcurrency)
	}
	if es.BatchSize < 1 || es.BatchSize > MaxSQSBatchSize {
		v.add("event source %s: batch size %d outside 1..%d", es.QueueRef, es.BatchSize, MaxSQSBatchSize)
	}
	if es.BatchSize > maxBatchWithoutWindow && es.MaxBatchingWindow == 0 {
		v.add("event source %s: batch size above %d requires a batching window", es.QueueRef, maxBatchWithoutWindow)
	}
	fn := s.Function(es.FunctionRef)
	q := s.Queue(es.QueueRef)
	if fn != nil && q != nil && q.VisibilityTimeout != 0 && fn.Timeout > q.VisibilityTimeout {
		v.add("event source %s: function %s timeout %s exceeds queue visibility timeout %s",
			es.QueueRef, fn.LogicalID, fn.Timeout, q.VisibilityTimeout)
	}
}

type violations struct {
	errs []error
}

func (v *violations) add(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidStack}, args...)...))
}

func (v *violations) expect(s *Stack, ref, kind, role string) {
	if ref == "" {
		v.add("%s is required", role)
		return
	}
	if got := s.Kind(ref); got != kind {
		if got == "" {
			v.add("%s %q does not exist", role, ref)
			return
		}
		v.add("%s %q is a %s, want %s", role, ref, got, kind)
	}
}

func (v *violations) err() error {
	return errors.Join(v.errs...)
}
