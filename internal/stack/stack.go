// Where: internal/stack/stack.go
// What: Declarative resource graph for the image pipeline.
// Why: One typed model feeds template synthesis, validation, and local provisioning.
package stack

import (
	"sort"
	"time"
)

const (
	BillingPayPerRequest = "PAY_PER_REQUEST"
	BillingProvisioned   = "PROVISIONED"

	RemovalDestroy = "Delete"
	RemovalRetain  = "Retain"

	EventObjectCreated = "s3:ObjectCreated:*"

	ProtocolLambda = "lambda"
	ProtocolSQS    = "sqs"
)

// Stack is the full resource graph.
type Stack struct {
	Name          string
	Parameters    []Parameter
	Buckets       []Bucket
	Tables        []Table
	Topics        []Topic
	Queues        []Queue
	Functions     []Function
	Subscriptions []Subscription
	EventSources  []EventSource
	Notifications []BucketNotification
	Grants        []Grant
	Outputs       []Output
}

// Parameter is a deploy-time input referenced by function environments.
type Parameter struct {
	Name        string
	Default     string
	Description string
}

type Bucket struct {
	LogicalID         string
	BucketName        string
	AutoDeleteObjects bool
	PublicReadAccess  bool
	RemovalPolicy     string
}

type Attribute struct {
	Name string
	Type string
}

type Table struct {
	LogicalID     string
	TableName     string
	PartitionKey  Attribute
	BillingMode   string
	RemovalPolicy string
}

type Topic struct {
	LogicalID   string
	TopicName   string
	DisplayName string
}

// DeadLetter redirects messages after MaxReceiveCount failed receives.
type DeadLetter struct {
	QueueRef        string
	MaxReceiveCount int
}

type Queue struct {
	LogicalID         string
	QueueName         string
	RetentionPeriod   time.Duration
	VisibilityTimeout time.Duration
	DeadLetter        *DeadLetter
}

// EnvValue is either a literal or a reference to a resource or parameter.
type EnvValue struct {
	Literal string
	Ref     string
}

type Function struct {
	LogicalID    string
	FunctionName string
	Runtime      string
	Handler      string
	CodeURI      string
	Architecture string
	MemorySize   int
	Timeout      time.Duration
	Environment  map[string]EnvValue
}

// Subscription attaches a function or queue endpoint to a topic.
type Subscription struct {
	TopicRef    string
	Protocol    string
	EndpointRef string
}

// EventSource polls a queue on behalf of a function.
type EventSource struct {
	FunctionRef             string
	QueueRef                string
	BatchSize               int
	MaxBatchingWindow       time.Duration
	MaxConcurrency          int
	ReportBatchItemFailures bool
}

type BucketNotification struct {
	BucketRef string
	Event     string
	TopicRef  string
}

type Output struct {
	Name        string
	Ref         string
	Description string
}

// Lookup helpers. Each returns nil when the logical ID is unknown.

func (s *Stack) Bucket(id string) *Bucket {
	for i := range s.Buckets {
		if s.Buckets[i].LogicalID == id {
			return &s.Buckets[i]
		}
	}
	return nil
}

func (s *Stack) Table(id string) *Table {
	for i := range s.Tables {
		if s.Tables[i].LogicalID == id {
			return &s.Tables[i]
		}
	}
	return nil
}

func (s *Stack) Topic(id string) *Topic {
	for i := range s.Topics {
		if s.Topics[i].LogicalID == id {
			return &s.Topics[i]
		}
	}
	return nil
}

func (s *Stack) Queue(id string) *Queue {
	for i := range s.Queues {
		if s.Queues[i].LogicalID == id {
			return &s.Queues[i]
		}
	}
	return nil
}

func (s *Stack) Function(id string) *Function {
	for i := range s.Functions {
		if s.Functions[i].LogicalID == id {
			return &s.Functions[i]
		}
	}
	return nil
}

func (s *Stack) Parameter(name string) *Parameter {
	for i := range s.Parameters {
		if s.Parameters[i].Name == name {
			return &s.Parameters[i]
		}
	}
	return nil
}

// Kind reports the resource kind registered under id, or "" when unknown.
func (s *Stack) Kind(id string) string {
	switch {
	case s.Bucket(id) != nil:
		return "bucket"
	case s.Table(id) != nil:
		return "table"
	case s.Topic(id) != nil:
		return "topic"
	case s.Queue(id) != nil:
		return "queue"
	case s.Function(id) != nil:
		return "function"
	case s.Parameter(id) != nil:
		return "parameter"
	}
	return ""
}

// LogicalIDs returns every resource logical ID in declaration order.
func (s *Stack) LogicalIDs() []string {
	var ids []string
	for _, b := range s.Buckets {
		ids = append(ids, b.LogicalID)
	}
	for _, t := range s.Tables {
		ids = append(ids, t.LogicalID)
	}
	for _, t := range s.Topics {
		ids = append(ids, t.LogicalID)
	}
	for _, q := range s.Queues {
		ids = append(ids, q.LogicalID)
	}
	for _, f := range s.Functions {
		ids = append(ids, f.LogicalID)
	}
	return ids
}

// GrantsFor returns the grants held by a function.
func (s *Stack) GrantsFor(functionRef string) []Grant {
	var out []Grant
	for _, g := range s.Grants {
		if g.FunctionRef == functionRef {
			out = append(out, g)
		}
	}
	return out
}

// EventSourcesFor returns the queue event sources feeding a function.
func (s *Stack) EventSourcesFor(functionRef string) []EventSource {
	var out []EventSource
	for _, es := range s.EventSources {
		if es.FunctionRef == functionRef {
			out = append(out, es)
		}
	}
	return out
}

// SubscriptionsTo returns function subscriptions whose endpoint is functionRef.
func (s *Stack) SubscriptionsTo(functionRef string) []Subscription {
	var out []Subscription
	for _, sub := range s.Subscriptions {
		if sub.Protocol == ProtocolLambda && sub.EndpointRef == functionRef {
			out = append(out, sub)
		}
	}
	return out
}

// Edge is one event-routing hop in the graph.
type Edge struct {
	From  string
	To    string
	Label string
}

// Edges lists the routing hops: notifications, subscriptions, event sources,
// and dead-letter redirects, sorted for stable output.
func (s *Stack) Edges() []Edge {
	var edges []Edge
	for _, n := range s.Notifications {
		edges = append(edges, Edge{From: n.BucketRef, To: n.TopicRef, Label: n.Event})
	}
	for _, sub := range s.Subscriptions {
		edges = append(edges, Edge{From: sub.TopicRef, To: sub.EndpointRef, Label: "subscribe/" + sub.Protocol})
	}
	for _, es := range s.EventSources {
		edges = append(edges, Edge{From: es.QueueRef, To: es.FunctionRef, Label: "poll"})
	}
	for _, q := range s.Queues {
		if q.DeadLetter != nil {
			edges = append(edges, Edge{From: q.LogicalID, To: q.DeadLetter.QueueRef, Label: "dead-letter"})
		}
	}
	for _, g := range s.Grants {
		if g.Kind == GrantTableReadWrite {
			edges = append(edges, Edge{From: g.FunctionRef, To: g.ResourceRef, Label: "write"})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}
