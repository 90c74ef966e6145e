// Where: internal/awsclient/awsclient.go
// What: Shared AWS SDK configuration loading.
// Why: Handlers and the CLI both need region, endpoint, and credential overrides for emulators.
package awsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// DefaultRegion is used when neither options nor the environment name one.
const DefaultRegion = "eu-west-1"

// Options overrides parts of the default credential chain.
type Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// LoadConfig resolves an aws.Config. Static credentials are used only when
// both keys are set; Endpoint becomes the base endpoint for every client.
func LoadConfig(ctx context.Context, opts Options) (aws.Config, error) {
	var loaders []func(*config.LoadOptions) error
	if region := strings.TrimSpace(opts.Region); region != "" {
		loaders = append(loaders, config.WithRegion(region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")
		loaders = append(loaders, config.WithCredentialsProvider(creds))
	}
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		loaders = append(loaders, config.WithBaseEndpoint(endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	return cfg, nil
}

// NewS3 returns an S3 client. Path-style addressing is forced when a custom
// endpoint is configured, since emulators rarely serve virtual-host buckets.
func NewS3(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != nil {
			o.UsePathStyle = true
		}
	})
}

func NewDynamoDB(cfg aws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg)
}

func NewSNS(cfg aws.Config) *sns.Client {
	return sns.NewFromConfig(cfg)
}

func NewSQS(cfg aws.Config) *sqs.Client {
	return sqs.NewFromConfig(cfg)
}

// NewSES returns an SES v2 client, optionally pinned to a different region
// than the rest of the stack.
func NewSES(cfg aws.Config, region string) *sesv2.Client {
	return sesv2.NewFromConfig(cfg, func(o *sesv2.Options) {
		if region != "" {
			o.Region = region
		}
	})
}
