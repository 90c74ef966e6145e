// Where: internal/provisioner/sqs.go
// What: SQS provisioning steps.
// Why: Dead-letter targets must exist before a redrive policy can name them.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/photo-album/eda-app/internal/stack"
)

type SQSAPI interface {
	CreateQueue(ctx context.Context, name string, attributes map[string]string) (string, error)
	QueueURL(ctx context.Context, name string) (string, error)
	QueueAttributes(ctx context.Context, queueURL string, names ...string) (map[string]string, error)
	SetQueueAttributes(ctx context.Context, queueURL string, attributes map[string]string) error
	DeleteQueue(ctx context.Context, queueURL string) error
}

const (
	attrQueueARN         = "QueueArn"
	attrRetention        = "MessageRetentionPeriod"
	attrVisibility       = "VisibilityTimeout"
	attrRedrivePolicy    = "RedrivePolicy"
	attrPolicy           = "Policy"
	attrMessagesVisible  = "ApproximateNumberOfMessages"
	attrMessagesInFlight = "ApproximateNumberOfMessagesNotVisible"
)

// queueOrder returns queues with dead-letter targets after their targets.
func queueOrder(queues []stack.Queue) []stack.Queue {
	placed := map[string]bool{}
	out := make([]stack.Queue, 0, len(queues))
	for len(out) < len(queues) {
		progressed := false
		for _, q := range queues {
			if placed[q.LogicalID] {
				continue
			}
			if q.DeadLetter != nil && !placed[q.DeadLetter.QueueRef] && hasQueue(queues, q.DeadLetter.QueueRef) {
				continue
			}
			placed[q.LogicalID] = true
			out = append(out, q)
			progressed = true
		}
		if !progressed {
			// Cyclic redrive; Validate rejects this, keep declared order.
			for _, q := range queues {
				if !placed[q.LogicalID] {
					placed[q.LogicalID] = true
					out = append(out, q)
				}
			}
		}
	}
	return out
}

func hasQueue(queues []stack.Queue, id string) bool {
	for _, q := range queues {
		if q.LogicalID == id {
			return true
		}
	}
	return false
}

func (p *applier) queues(ctx context.Context) {
	if len(p.stack.Queues) == 0 || p.clients.SQS == nil {
		return
	}
	for _, q := range queueOrder(p.stack.Queues) {
		name := q.PhysicalName()
		attrs := map[string]string{}
		if q.RetentionPeriod > 0 {
			attrs[attrRetention] = strconv.Itoa(int(q.RetentionPeriod.Seconds()))
		}
		if q.VisibilityTimeout > 0 {
			attrs[attrVisibility] = strconv.Itoa(int(q.VisibilityTimeout.Seconds()))
		}
		if q.DeadLetter != nil {
			target, ok := p.state.queueARNs[q.DeadLetter.QueueRef]
			if !ok {
				p.fail("Cannot create queue %s: dead-letter queue %s was not provisioned", name, q.DeadLetter.QueueRef)
				continue
			}
			policy, err := redrivePolicy(target, q.DeadLetter.MaxReceiveCount)
			if err != nil {
				p.fail("Failed to build redrive policy for %s: %v", name, err)
				continue
			}
			attrs[attrRedrivePolicy] = policy
		}

		url, err := p.clients.SQS.CreateQueue(ctx, name, attrs)
		if err != nil {
			p.fail("Failed to create queue %s: %v", name, err)
			continue
		}
		// CreateQueue ignores attributes that differ on an existing queue.
		if err := p.clients.SQS.SetQueueAttributes(ctx, url, attrs); err != nil {
			p.fail("Failed to update attributes on %s: %v", name, err)
		}
		got, err := p.clients.SQS.QueueAttributes(ctx, url, attrQueueARN)
		if err != nil || got[attrQueueARN] == "" {
			p.fail("Failed to read ARN of queue %s: %v", name, err)
			continue
		}
		p.state.queueURLs[q.LogicalID] = url
		p.state.queueARNs[q.LogicalID] = got[attrQueueARN]
		if q.DeadLetter != nil {
			fmt.Fprintf(p.out, "✅ Created SQS Queue: %s (dead-letter: %s after %d receives)\n",
				name, q.DeadLetter.QueueRef, q.DeadLetter.MaxReceiveCount)
		} else {
			fmt.Fprintf(p.out, "✅ Created SQS Queue: %s\n", name)
		}
	}

	p.queuePolicies(ctx)
}

// queuePolicies lets subscribed topics deliver into their queues. Topic ARNs
// are resolved earlier, since topics are provisioned before queues.
func (p *applier) queuePolicies(ctx context.Context) {
	sources := map[string][]string{}
	for _, sub := range p.stack.Subscriptions {
		if sub.Protocol != stack.ProtocolSQS {
			continue
		}
		if arn, ok := p.state.topicARNs[sub.TopicRef]; ok {
			sources[sub.EndpointRef] = append(sources[sub.EndpointRef], arn)
		}
	}
	for _, q := range p.stack.Queues {
		topics := sources[q.LogicalID]
		url, ok := p.state.queueURLs[q.LogicalID]
		if len(topics) == 0 || !ok {
			continue
		}
		policy, err := queuePolicy(p.state.queueARNs[q.LogicalID], topics)
		if err != nil {
			p.fail("Failed to build policy for queue %s: %v", q.PhysicalName(), err)
			continue
		}
		if err := p.clients.SQS.SetQueueAttributes(ctx, url, map[string]string{attrPolicy: policy}); err != nil {
			p.fail("Failed to set policy on queue %s: %v", q.PhysicalName(), err)
		}
	}
}

func (p *applier) deleteQueues(ctx context.Context) {
	if p.clients.SQS == nil {
		return
	}
	ordered := queueOrder(p.stack.Queues)
	// Source queues go first so no redrive policy points at a deleted queue.
	for i := len(ordered) - 1; i >= 0; i-- {
		name := ordered[i].PhysicalName()
		url, err := p.clients.SQS.QueueURL(ctx, name)
		if errors.Is(err, ErrNotFound) {
			fmt.Fprintf(p.out, "Queue '%s' not found. Skipping.\n", name)
			continue
		}
		if err != nil {
			p.fail("Failed to look up queue %s: %v", name, err)
			continue
		}
		if err := p.clients.SQS.DeleteQueue(ctx, url); err != nil && !errors.Is(err, ErrNotFound) {
			p.fail("Failed to delete queue %s: %v", name, err)
			continue
		}
		fmt.Fprintf(p.out, "🗑  Deleted SQS Queue: %s\n", name)
	}
}
