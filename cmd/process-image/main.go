// Where: cmd/process-image/main.go
// What: Lambda entrypoint for the orders queue consumer.
// Why: Records accepted uploads in the image table; unsupported types are
// left to redrive into the bad-orders queue.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/photo-album/eda-app/internal/awsclient"
	"github.com/photo-album/eda-app/internal/config"
	"github.com/photo-album/eda-app/internal/handlers/imageprocessor"
	"github.com/photo-album/eda-app/internal/logging"
)

const functionName = "process-image"

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

func newHandler(ctx context.Context, rt config.Runtime, logger *zap.Logger) (*imageprocessor.Handler, error) {
	proc, err := config.LoadProcessor()
	if err != nil {
		return nil, err
	}
	cfg, err := awsclient.LoadConfig(ctx, awsclient.Options{Region: rt.Region, Endpoint: rt.Endpoint})
	if err != nil {
		return nil, err
	}
	return imageprocessor.New(
		awsclient.NewS3(cfg),
		awsclient.NewDynamoDB(cfg),
		proc.TableName,
		proc.PartitionKey,
		logger,
	), nil
}
