// Where: cmd/mailer/main.go
// What: Lambda entrypoint for the new-image mailer.
// Why: Subscribed directly to the upload topic; one email per uploaded object.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/photo-album/eda-app/internal/awsclient"
	"github.com/photo-album/eda-app/internal/config"
	"github.com/photo-album/eda-app/internal/handlers/mailer"
	"github.com/photo-album/eda-app/internal/logging"
	"github.com/photo-album/eda-app/internal/notify"
)

const functionName = "mailer"

func main() {
	rt := config.LoadRuntime()
	logger := logging.Must(rt.LogLevel, logging.Function(functionName))
	defer func() { _ = logger.Sync() }()

	handler, err := newHandler(context.Background(), rt, logger)
	if err != nil {
		logger.Fatal("cold start failed", zap.Error(err))
	}
	lambda.Start(handler.Handle)
}

func newHandler(ctx context.Context, rt config.Runtime, logger *zap.Logger) (*mailer.Handler, error) {
	mail, err := config.LoadMail()
	if err != nil {
		return nil, err
	}
	cfg, err := awsclient.LoadConfig(ctx, awsclient.Options{Region: rt.Region, Endpoint: rt.Endpoint})
	if err != nil {
		return nil, err
	}
	sender := notify.NewMailer(awsclient.NewSES(cfg, mail.Region), mail.From, mail.To)
	return mailer.New(sender, mail.From, logger), nil
}
