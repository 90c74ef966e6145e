// Where: internal/provisioner/sns.go
// What: SNS provisioning steps.
// Why: Create the fan-out topic and subscribe the queues to it.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/photo-album/eda-app/internal/stack"
)

type SNSAPI interface {
	CreateTopic(ctx context.Context, name string, attributes map[string]string) (string, error)
	SetTopicPolicy(ctx context.Context, topicARN, policy string) error
	Subscribe(ctx context.Context, topicARN, protocol, endpoint string) (string, error)
	ListTopics(ctx context.Context) ([]string, error)
	DeleteTopic(ctx context.Context, topicARN string) error
}

func (p *applier) topics(ctx context.Context) {
	if len(p.stack.Topics) == 0 || p.clients.SNS == nil {
		return
	}
	for _, topic := range p.stack.Topics {
		name := topic.PhysicalName()
		attrs := map[string]string{}
		if topic.DisplayName != "" {
			attrs["DisplayName"] = topic.DisplayName
		}
		// CreateTopic is idempotent and returns the existing ARN.
		arn, err := p.clients.SNS.CreateTopic(ctx, name, attrs)
		if err != nil {
			p.fail("Failed to create topic %s: %v", name, err)
			continue
		}
		p.state.topicARNs[topic.LogicalID] = arn
		fmt.Fprintf(p.out, "✅ Created SNS Topic: %s\n", name)

		sources := p.publishersOf(topic.LogicalID)
		if len(sources) == 0 {
			continue
		}
		policy, err := topicPolicy(arn, sources)
		if err != nil {
			p.fail("Failed to build policy for topic %s: %v", name, err)
			continue
		}
		if err := p.clients.SNS.SetTopicPolicy(ctx, arn, policy); err != nil {
			p.fail("Failed to set policy on topic %s: %v", name, err)
		}
	}
}

// publishersOf returns the ARNs of buckets that notify the topic.
func (p *applier) publishersOf(topicRef string) []string {
	var arns []string
	for _, n := range p.stack.Notifications {
		if n.TopicRef != topicRef {
			continue
		}
		if bucket := p.stack.Bucket(n.BucketRef); bucket != nil {
			arns = append(arns, bucketARN(bucket.PhysicalName()))
		}
	}
	return arns
}

func (p *applier) subscriptions(ctx context.Context) {
	if len(p.stack.Subscriptions) == 0 || p.clients.SNS == nil {
		return
	}
	for _, sub := range p.stack.Subscriptions {
		topicARN, ok := p.state.topicARNs[sub.TopicRef]
		if !ok {
			p.fail("Cannot subscribe %s: topic %s was not provisioned", sub.EndpointRef, sub.TopicRef)
			continue
		}
		switch sub.Protocol {
		case stack.ProtocolSQS:
			queueARN, ok := p.state.queueARNs[sub.EndpointRef]
			if !ok {
				p.fail("Cannot subscribe %s: queue was not provisioned", sub.EndpointRef)
				continue
			}
			if _, err := p.clients.SNS.Subscribe(ctx, topicARN, sub.Protocol, queueARN); err != nil {
				p.fail("Failed to subscribe %s to %s: %v", sub.EndpointRef, sub.TopicRef, err)
				continue
			}
			fmt.Fprintf(p.out, "✅ Subscribed %s to %s\n", sub.EndpointRef, sub.TopicRef)
		default:
			fmt.Fprintf(p.out, "Subscription %s -> %s (%s) is deployed with the template. Skipping.\n",
				sub.TopicRef, sub.EndpointRef, sub.Protocol)
		}
	}
}

func (p *applier) deleteTopics(ctx context.Context) {
	if len(p.stack.Topics) == 0 || p.clients.SNS == nil {
		return
	}
	arns, err := p.clients.SNS.ListTopics(ctx)
	if err != nil {
		p.fail("Failed to list topics: %v", err)
		return
	}
	for _, topic := range p.stack.Topics {
		name := topic.PhysicalName()
		arn := findTopicARN(arns, name)
		if arn == "" {
			fmt.Fprintf(p.out, "Topic '%s' not found. Skipping.\n", name)
			continue
		}
		err := p.clients.SNS.DeleteTopic(ctx, arn)
		switch {
		case errors.Is(err, ErrNotFound):
			fmt.Fprintf(p.out, "Topic '%s' not found. Skipping.\n", name)
		case err != nil:
			p.fail("Failed to delete topic %s: %v", name, err)
		default:
			fmt.Fprintf(p.out, "🗑  Deleted SNS Topic: %s\n", name)
		}
	}
}

func findTopicARN(arns []string, name string) string {
	for _, arn := range arns {
		if strings.HasSuffix(arn, ":"+name) {
			return arn
		}
	}
	return ""
}
