// Where: internal/provisioner/s3.go
// What: S3 provisioning steps.
// Why: Create the upload bucket and point its notifications at the topic.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type S3API interface {
	ListBuckets(ctx context.Context) ([]string, error)
	CreateBucket(ctx context.Context, name string) error
	BlockPublicAccess(ctx context.Context, name string) error
	PutTopicNotifications(ctx context.Context, bucket string, targets []TopicTarget) error
	EmptyBucket(ctx context.Context, name string) (int, error)
	DeleteBucket(ctx context.Context, name string) error
	PutObject(ctx context.Context, bucket, key, contentType string, body io.Reader) error
}

// TopicTarget routes one bucket event type to a topic.
type TopicTarget struct {
	Event    string
	TopicARN string
}

func (p *applier) buckets(ctx context.Context) {
	if len(p.stack.Buckets) == 0 || p.clients.S3 == nil {
		return
	}
	existing := map[string]struct{}{}
	if names, err := p.clients.S3.ListBuckets(ctx); err == nil {
		for _, name := range names {
			existing[name] = struct{}{}
		}
	}

	for _, bucket := range p.stack.Buckets {
		name := strings.TrimSpace(bucket.PhysicalName())
		if name == "" {
			continue
		}
		if _, ok := existing[name]; ok {
			fmt.Fprintf(p.out, "Bucket '%s' already exists. Skipping.\n", name)
		} else {
			if err := p.clients.S3.CreateBucket(ctx, name); err != nil {
				p.fail("Failed to create bucket %s: %v", name, err)
				continue
			}
			fmt.Fprintf(p.out, "✅ Created S3 Bucket: %s\n", name)
		}
		if !bucket.PublicReadAccess {
			if err := p.clients.S3.BlockPublicAccess(ctx, name); err != nil {
				p.fail("Failed to block public access on %s: %v", name, err)
			}
		}
	}
}

func (p *applier) notifications(ctx context.Context) {
	if len(p.stack.Notifications) == 0 || p.clients.S3 == nil {
		return
	}
	targets := map[string][]TopicTarget{}
	var order []string
	for _, n := range p.stack.Notifications {
		arn, ok := p.state.topicARNs[n.TopicRef]
		if !ok {
			p.fail("Cannot route %s events: topic %s was not provisioned", n.BucketRef, n.TopicRef)
			continue
		}
		if _, seen := targets[n.BucketRef]; !seen {
			order = append(order, n.BucketRef)
		}
		targets[n.BucketRef] = append(targets[n.BucketRef], TopicTarget{Event: n.Event, TopicARN: arn})
	}

	for _, ref := range order {
		bucket := p.stack.Bucket(ref)
		if bucket == nil {
			p.fail("Bucket %s is not declared", ref)
			continue
		}
		name := bucket.PhysicalName()
		if err := p.clients.S3.PutTopicNotifications(ctx, name, targets[ref]); err != nil {
			p.fail("Failed to configure notifications on %s: %v", name, err)
			continue
		}
		fmt.Fprintf(p.out, "✅ Configured S3 notifications: %s -> %d topic(s)\n", name, len(targets[ref]))
	}
}

func (p *applier) deleteBuckets(ctx context.Context) {
	if p.clients.S3 == nil {
		return
	}
	for _, bucket := range p.stack.Buckets {
		name := bucket.PhysicalName()
		if bucket.AutoDeleteObjects {
			n, err := p.clients.S3.EmptyBucket(ctx, name)
			switch {
			case errors.Is(err, ErrNotFound):
				fmt.Fprintf(p.out, "Bucket '%s' not found. Skipping.\n", name)
				continue
			case err != nil:
				p.fail("Failed to empty bucket %s: %v", name, err)
				continue
			case n > 0:
				fmt.Fprintf(p.out, "🧹 Removed %d object(s) from %s\n", n, name)
			}
		}
		err := p.clients.S3.DeleteBucket(ctx, name)
		switch {
		case errors.Is(err, ErrNotFound):
			fmt.Fprintf(p.out, "Bucket '%s' not found. Skipping.\n", name)
		case err != nil:
			p.fail("Failed to delete bucket %s: %v", name, err)
		default:
			fmt.Fprintf(p.out, "🗑  Deleted S3 Bucket: %s\n", name)
		}
	}
}
