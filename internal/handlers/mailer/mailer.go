// Where: internal/handlers/mailer/mailer.go
// What: Topic subscriber that emails a confirmation for every uploaded image.
// Why: Direct fan-out consumer; failures are logged, never retried.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/photo-album/eda-app/internal/envelope"
	"github.com/photo-album/eda-app/internal/meta"
	"github.com/photo-album/eda-app/internal/notify"
	"go.uber.org/zap"
)

// Sender delivers one notification email.
type Sender interface {
	Send(ctx context.Context, subject string, details notify.ContactDetails) (string, error)
}

type Handler struct {
	Sender Sender
	From   string
	Logger *zap.Logger
}

// New returns a Handler; a nil logger is replaced by a no-op logger.
func New(sender Sender, from string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Sender: sender, From: from, Logger: logger}
}

// UploadMessage is the body line for a newly uploaded object.
func UploadMessage(obj envelope.ObjectRef) string {
	return fmt.Sprintf("We received your Image. Its URL is %s", obj.URL())
}

// Handle sends one email per object named in the notifications.
func (h *Handler) Handle(ctx context.Context, event events.SNSEvent) error {
	if len(event.Records) == 0 {
		h.Logger.Warn("invalid event format: missing records")
		return nil
	}

	for _, record := range event.Records {
		log := h.Logger.With(zap.String("messageId", record.SNS.MessageID))
		objects, err := envelope.DecodeObjects(record.SNS.Message)
		if err != nil {
			log.Warn("skipping notification without an s3 event", zap.Error(err))
			continue
		}
		for _, obj := range objects {
			details := notify.ContactDetails{
				Name:    meta.SenderName,
				Email:   h.From,
				Message: UploadMessage(obj),
			}
			id, err := h.Sender.Send(ctx, notify.SubjectNewImage, details)
			if err != nil {
				log.Error("failed to send upload confirmation",
					zap.String("bucket", obj.Bucket),
					zap.String("key", obj.Key),
					zap.Error(err),
				)
				continue
			}
			log.Info("sent upload confirmation",
				zap.String("bucket", obj.Bucket),
				zap.String("key", obj.Key),
				zap.String("sesMessageId", id),
			)
		}
	}
	return nil
}
