// Where: internal/provisioner/aws_factory.go
// What: AWS client factory for emulator provisioning.
// Why: Encapsulate SDK configuration for local endpoints.
package provisioner

import (
	"context"
	"fmt"

	"github.com/photo-album/eda-app/internal/awsclient"
	"github.com/photo-album/eda-app/internal/constants"
	"github.com/photo-album/eda-app/internal/envutil"
)

// Emulators accept any credentials; these are used when none are configured.
const (
	defaultAccessKey = "test"
	defaultSecretKey = "test"
)

// Clients groups the service adapters used by one provisioning run.
type Clients struct {
	DynamoDB DynamoDBAPI
	S3       S3API
	SNS      SNSAPI
	SQS      SQSAPI
}

type ClientFactory interface {
	Clients(ctx context.Context, endpoint string) (Clients, error)
}

type awsClientFactory struct {
	Options awsclient.Options
}

func (f awsClientFactory) Clients(ctx context.Context, endpoint string) (Clients, error) {
	if endpoint == "" {
		return Clients{}, fmt.Errorf("endpoint is required")
	}
	opts := f.Options
	opts.Endpoint = endpoint
	if opts.AccessKey == "" {
		opts.AccessKey = envutil.GetenvDefault(envutil.HostEnvKey(constants.HostSuffixAccessKey), defaultAccessKey)
	}
	if opts.SecretKey == "" {
		opts.SecretKey = envutil.GetenvDefault(envutil.HostEnvKey(constants.HostSuffixSecretKey), defaultSecretKey)
	}

	cfg, err := awsclient.LoadConfig(ctx, opts)
	if err != nil {
		return Clients{}, err
	}
	return Clients{
		DynamoDB: awsDynamoClient{client: awsclient.NewDynamoDB(cfg)},
		S3:       awsS3Client{client: awsclient.NewS3(cfg)},
		SNS:      awsSNSClient{client: awsclient.NewSNS(cfg)},
		SQS:      awsSQSClient{client: awsclient.NewSQS(cfg)},
	}, nil
}
