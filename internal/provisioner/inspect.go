package provisioner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/photo-album/eda-app/internal/stack"
)

// QueueDepth is a point-in-time message count for one queue.
type QueueDepth struct {
	LogicalID string
	Name      string
	Visible   int
	InFlight  int
	Missing   bool
}

// Inspect reports the approximate depth of every declared queue.
func (r *Runner) Inspect(ctx context.Context, s *stack.Stack, project string) ([]QueueDepth, error) {
	if s == nil {
		return nil, fmt.Errorf("stack is nil")
	}
	clients, _, err := r.session(ctx, project)
	if err != nil {
		return nil, err
	}
	if clients.SQS == nil {
		return nil, fmt.Errorf("sqs client not configured")
	}

	out := make([]QueueDepth, 0, len(s.Queues))
	for _, q := range s.Queues {
		depth := QueueDepth{LogicalID: q.LogicalID, Name: q.PhysicalName()}
		url, err := clients.SQS.QueueURL(ctx, depth.Name)
		if errors.Is(err, ErrNotFound) {
			depth.Missing = true
			out = append(out, depth)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("look up queue %s: %w", depth.Name, err)
		}
		attrs, err := clients.SQS.QueueAttributes(ctx, url, attrMessagesVisible, attrMessagesInFlight)
		if err != nil {
			return nil, fmt.Errorf("read attributes of %s: %w", depth.Name, err)
		}
		depth.Visible = atoi(attrs[attrMessagesVisible])
		depth.InFlight = atoi(attrs[attrMessagesInFlight])
		out = append(out, depth)
	}
	return out, nil
}

// Upload puts one object into the bucket, which triggers the pipeline.
// It returns the bucket name used.
func (r *Runner) Upload(ctx context.Context, s *stack.Stack, project, bucketRef, key, contentType string, body io.Reader) (string, error) {
	if s == nil {
		return "", fmt.Errorf("stack is nil")
	}
	var bucket *stack.Bucket
	if bucketRef != "" {
		bucket = s.Bucket(bucketRef)
	} else if len(s.Buckets) > 0 {
		bucket = &s.Buckets[0]
	}
	if bucket == nil {
		return "", fmt.Errorf("bucket %q is not declared", bucketRef)
	}
	clients, _, err := r.session(ctx, project)
	if err != nil {
		return "", err
	}
	if clients.S3 == nil {
		return "", fmt.Errorf("s3 client not configured")
	}
	name := bucket.PhysicalName()
	if err := clients.S3.PutObject(ctx, name, key, contentType, body); err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", name, key, err)
	}
	return name, nil
}
