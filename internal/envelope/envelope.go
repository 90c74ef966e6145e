// Where: internal/envelope/envelope.go
// What: Decoding of the nested messages that flow through the pipeline.
// Why: An S3 event arrives wrapped in an SNS notification, which SQS wraps again.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

var (
	// ErrEmptyBody is returned for queue records without a body.
	ErrEmptyBody = errors.New("empty message body")
	// ErrNotNotification is returned when a body is JSON but not an SNS notification.
	ErrNotNotification = errors.New("body is not a notification envelope")
)

// ObjectRef identifies one object named by an S3 event record.
type ObjectRef struct {
	Bucket    string
	Key       string
	Size      int64
	ETag      string
	EventName string
	EventTime time.Time
}

// URL renders the object as s3://bucket/key.
func (o ObjectRef) URL() string {
	return fmt.Sprintf("s3://%s/%s", o.Bucket, o.Key)
}

// DecodeNotification parses an SQS body carrying an SNS notification.
// Only Message is required; Subject may be empty.
func DecodeNotification(body string) (events.SNSEntity, error) {
	if strings.TrimSpace(body) == "" {
		return events.SNSEntity{}, ErrEmptyBody
	}
	var entity events.SNSEntity
	if err := json.Unmarshal([]byte(body), &entity); err != nil {
		return events.SNSEntity{}, fmt.Errorf("decode notification: %w", err)
	}
	if entity.Message == "" {
		return events.SNSEntity{}, ErrNotNotification
	}
	return entity, nil
}

// DecodeObjects parses an S3 event notification message.
// S3 test events carry no records and decode to an empty slice.
func DecodeObjects(message string) ([]ObjectRef, error) {
	var event events.S3Event
	if err := json.Unmarshal([]byte(message), &event); err != nil {
		return nil, fmt.Errorf("decode s3 event: %w", err)
	}
	out := make([]ObjectRef, 0, len(event.Records))
	for _, record := range event.Records {
		key, err := DecodeKey(record.S3.Object.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, ObjectRef{
			Bucket:    record.S3.Bucket.Name,
			Key:       key,
			Size:      record.S3.Object.Size,
			ETag:      record.S3.Object.ETag,
			EventName: record.EventName,
			EventTime: record.EventTime,
		})
	}
	return out, nil
}

// ObjectsFromQueueBody unwraps an SQS body down to the S3 objects it names.
func ObjectsFromQueueBody(body string) (events.SNSEntity, []ObjectRef, error) {
	entity, err := DecodeNotification(body)
	if err != nil {
		return events.SNSEntity{}, nil, err
	}
	objects, err := DecodeObjects(entity.Message)
	if err != nil {
		return entity, nil, err
	}
	return entity, objects, nil
}

// DecodeKey reverses the form encoding S3 applies to keys in event payloads.
func DecodeKey(raw string) (string, error) {
	key, err := url.QueryUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("decode object key %q: %w", raw, err)
	}
	return key, nil
}
