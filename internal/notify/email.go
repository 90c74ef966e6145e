// Where: internal/notify/email.go
// What: SES v2 request construction and sending.
// Why: Keep transport details out of the event handlers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const charset = "UTF-8"

// Subjects used by the two mailers.
const (
	SubjectNewImage = "New Image Upload"
	SubjectRejected = "New message received"
)

// EmailAPI is the subset of the SES v2 client used here.
type EmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Email is a fully addressed notification.
type Email struct {
	From    string
	To      []string
	Subject string
	Details ContactDetails
}

// BuildSendEmailInput renders the bodies and assembles the SES request.
func BuildSendEmailInput(email Email) (*sesv2.SendEmailInput, error) {
	if strings.TrimSpace(email.From) == "" {
		return nil, errors.New("sender address is required")
	}
	if len(email.To) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	html, err := RenderHTML(email.Details)
	if err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}
	text, err := RenderText(email.Details)
	if err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}
	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(email.From),
		Destination: &types.Destination{
			ToAddresses: email.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: content(email.Subject),
				Body: &types.Body{
					Html: content(html),
					Text: content(text),
				},
			},
		},
	}, nil
}

func content(data string) *types.Content {
	return &types.Content{Charset: aws.String(charset), Data: aws.String(data)}
}

// Mailer sends notifications from a fixed sender to a fixed recipient.
type Mailer struct {
	Client EmailAPI
	From   string
	To     string
}

// NewMailer returns a Mailer bound to the given addresses.
func NewMailer(client EmailAPI, from, to string) *Mailer {
	return &Mailer{Client: client, From: from, To: to}
}

// Send delivers one notification and returns the SES message ID.
func (m *Mailer) Send(ctx context.Context, subject string, details ContactDetails) (string, error) {
	if m == nil || m.Client == nil {
		return "", errors.New("email client is not configured")
	}
	input, err := BuildSendEmailInput(Email{
		From:    m.From,
		To:      []string{m.To},
		Subject: subject,
		Details: details,
	})
	if err != nil {
		return "", err
	}
	out, err := m.Client.SendEmail(ctx, input)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
