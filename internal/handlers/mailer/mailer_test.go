package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/photo-album/eda-app/internal/notify"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type sent struct {
	subject string
	details notify.ContactDetails
}

type fakeSender struct {
	sent []sent
	err  error
}

func (f *fakeSender) Send(_ context.Context, subject string, details notify.ContactDetails) (string, error) {
	f.sent = append(f.sent, sent{subject: subject, details: details})
	if f.err != nil {
		return "", f.err
	}
	return "ses-1", nil
}

const uploadEvent = `{"Records":[` +
	`{"s3":{"bucket":{"name":"images"},"object":{"key":"cat.jpeg","size":10}}},` +
	`{"s3":{"bucket":{"name":"images"},"object":{"key":"my+dog.png","size":20}}}]}`

func snsEvent(messages ...string) events.SNSEvent {
	var event events.SNSEvent
	for i, msg := range messages {
		event.Records = append(event.Records, events.SNSEventRecord{
			SNS: events.SNSEntity{MessageID: string(rune('a' + i)), Message: msg},
		})
	}
	return event
}

func TestHandleSendsOneEmailPerObject(t *testing.T) {
	sender := &fakeSender{}
	h := New(sender, "album@example.com", nil)

	if err := h.Handle(context.Background(), snsEvent(uploadEvent)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected two emails, got %d", len(sender.sent))
	}
	first := sender.sent[0]
	if first.subject != notify.SubjectNewImage {
		t.Fatalf("unexpected subject: %s", first.subject)
	}
	if first.details.Name != "The Photo Album" || first.details.Email != "album@example.com" {
		t.Fatalf("unexpected sender details: %+v", first.details)
	}
	if first.details.Message != "We received your Image. Its URL is s3://images/cat.jpeg" {
		t.Fatalf("unexpected message: %s", first.details.Message)
	}
	if got := sender.sent[1].details.Message; got != "We received your Image. Its URL is s3://images/my dog.png" {
		t.Fatalf("expected decoded key, got %s", got)
	}
}

func TestHandleLogsSendFailures(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := &fakeSender{err: errors.New("throttled")}
	h := New(sender, "album@example.com", zap.New(core))

	if err := h.Handle(context.Background(), snsEvent(uploadEvent)); err != nil {
		t.Fatalf("send failures must not fail the invocation, got %v", err)
	}
	if n := logs.FilterMessage("failed to send upload confirmation").Len(); n != 2 {
		t.Fatalf("expected two error logs, got %d", n)
	}
}

func TestHandleSkipsUndecodableMessages(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := &fakeSender{}
	h := New(sender, "album@example.com", zap.New(core))

	if err := h.Handle(context.Background(), snsEvent("not json", uploadEvent)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected the valid record to be processed, got %d emails", len(sender.sent))
	}
	if logs.FilterMessage("skipping notification without an s3 event").Len() != 1 {
		t.Fatalf("expected a skip log entry")
	}
}

func TestHandleEmptyEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := New(&fakeSender{}, "album@example.com", zap.New(core))
	if err := h.Handle(context.Background(), events.SNSEvent{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if logs.FilterMessage("invalid event format: missing records").Len() != 1 {
		t.Fatalf("expected warning for empty event")
	}
}
