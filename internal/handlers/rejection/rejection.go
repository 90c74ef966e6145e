// Where: internal/handlers/rejection/rejection.go
// What: Dead-letter queue consumer that emails a notice for every rejected message.
// Why: Messages land here after exhausting their receives on the orders queue.
package rejection

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

// RejectionMessage is the body line for a dead-lettered notification.
func RejectionMessage(message string) string {
	return fmt.Sprintf("We received your message: %s", message)
}

// Handle emails one notice per well-formed record. Malformed records and
// send failures are logged and dropped; the invocation never fails.
func (h *Handler) Handle(ctx context.Context, event events.SQSEvent) error {
	if len(event.Records) == 0 {
		h.Logger.Warn("invalid event format: missing records")
		return nil
	}

	for _, record := range event.Records {
		log := h.Logger.With(zap.String("messageId", record.MessageId))
		if strings.TrimSpace(record.Body) == "" {
			log.Warn("invalid queue message format: missing body")
			continue
		}

		notification, err := envelope.DecodeNotification(record.Body)
		if err != nil {
			if errors.Is(err, envelope.ErrNotNotification) {
				log.Warn("invalid event format: missing Message or Subject")
			} else {
				log.Warn("invalid queue message format: body is not JSON", zap.Error(err))
			}
			continue
		}
		if notification.Subject == "" {
			log.Warn("invalid event format: missing Message or Subject")
			continue
		}
		log.Debug("dead-lettered notification",
			zap.String("subject", notification.Subject),
			zap.String("topicArn", notification.TopicArn),
		)

		details := notify.ContactDetails{
			Name:    meta.SenderName,
			Email:   h.From,
			Message: RejectionMessage(notification.Message),
		}
		id, err := h.Sender.Send(ctx, notify.SubjectRejected, details)
		if err != nil {
			log.Error("failed to send rejection notice", zap.Error(err))
			continue
		}
		log.Info("sent rejection notice", zap.String("sesMessageId", id))
	}
	return nil
}
