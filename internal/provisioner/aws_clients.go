// Where: internal/provisioner/aws_clients.go
// What: AWS SDK adapters for DynamoDB, S3, SNS, and SQS.
// Why: Map internal provisioner types to SDK types.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
)

// ErrNotFound is returned by adapters when the named resource does not exist.
var ErrNotFound = errors.New("resource not found")

var notFoundCodes = map[string]struct{}{
	"ResourceNotFoundException": {},
	"NoSuchBucket":              {},
	"NotFound":                  {},
	"QueueDoesNotExist":         {},
	"AWS.SimpleQueueService.NonExistentQueue": {},
	"NotFoundException":                       {},
}

func mapNotFound(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, ok := notFoundCodes[apiErr.ErrorCode()]; ok {
			return fmt.Errorf("%w: %s", ErrNotFound, apiErr.ErrorMessage())
		}
	}
	return err
}

type awsDynamoClient struct {
	client *dynamodb.Client
}

func (c awsDynamoClient) ListTables(ctx context.Context) ([]string, error) {
	var names []string
	paginator := dynamodb.NewListTablesPaginator(c.client, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		names = append(names, page.TableNames...)
	}
	return names, nil
}

func (c awsDynamoClient) CreateTable(ctx context.Context, spec TableSpec) error {
	input, err := buildCreateTableInput(spec)
	if err != nil {
		return err
	}
	_, err = c.client.CreateTable(ctx, input)
	return err
}

func (c awsDynamoClient) DeleteTable(ctx context.Context, name string) error {
	_, err := c.client.DeleteTable(ctx, &dynamodb.DeleteTableInput{TableName: aws.String(name)})
	return mapNotFound(err)
}

func buildCreateTableInput(spec TableSpec) (*dynamodb.CreateTableInput, error) {
	billingMode, err := mapBillingMode(spec.BillingMode)
	if err != nil {
		return nil, err
	}
	attrType, err := mapAttributeType(spec.PartitionKeyType)
	if err != nil {
		return nil, err
	}
	out := &dynamodb.CreateTableInput{
		TableName: aws.String(spec.Name),
		KeySchema: []types.KeySchemaElement{{
			AttributeName: aws.String(spec.PartitionKey),
			KeyType:       types.KeyTypeHash,
		}},
		AttributeDefinitions: []types.AttributeDefinition{{
			AttributeName: aws.String(spec.PartitionKey),
			AttributeType: attrType,
		}},
		BillingMode: billingMode,
	}
	if billingMode == types.BillingModeProvisioned {
		out.ProvisionedThroughput = &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(5),
			WriteCapacityUnits: aws.Int64(5),
		}
	}
	return out, nil
}

func mapBillingMode(value string) (types.BillingMode, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "PAY_PER_REQUEST", "":
		return types.BillingModePayPerRequest, nil
	case "PROVISIONED":
		return types.BillingModeProvisioned, nil
	default:
		return "", fmt.Errorf("unsupported billing mode: %s", value)
	}
}

func mapAttributeType(value string) (types.ScalarAttributeType, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "S", "":
		return types.ScalarAttributeTypeS, nil
	case "N":
		return types.ScalarAttributeTypeN, nil
	case "B":
		return types.ScalarAttributeTypeB, nil
	default:
		return "", fmt.Errorf("unsupported attribute type: %s", value)
	}
}

type awsS3Client struct {
	client *s3.Client
}

func (c awsS3Client) ListBuckets(ctx context.Context) ([]string, error) {
	resp, err := c.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Buckets))
	for _, bucket := range resp.Buckets {
		if bucket.Name == nil {
			continue
		}
		names = append(names, *bucket.Name)
	}
	return names, nil
}

func (c awsS3Client) CreateBucket(ctx context.Context, name string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	if region := c.client.Options().Region; region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}
	_, err := c.client.CreateBucket(ctx, input)
	return err
}

func (c awsS3Client) BlockPublicAccess(ctx context.Context, name string) error {
	_, err := c.client.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(name),
		PublicAccessBlockConfiguration: &s3types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(true),
			BlockPublicPolicy:     aws.Bool(true),
			IgnorePublicAcls:      aws.Bool(true),
			RestrictPublicBuckets: aws.Bool(true),
		},
	})
	return err
}

func (c awsS3Client) PutTopicNotifications(ctx context.Context, bucket string, targets []TopicTarget) error {
	configs := make([]s3types.TopicConfiguration, 0, len(targets))
	for _, target := range targets {
		configs = append(configs, s3types.TopicConfiguration{
			TopicArn: aws.String(target.TopicARN),
			Events:   []s3types.Event{s3types.Event(target.Event)},
		})
	}
	_, err := c.client.PutBucketNotificationConfiguration(ctx, &s3.PutBucketNotificationConfigurationInput{
		Bucket: aws.String(bucket),
		NotificationConfiguration: &s3types.NotificationConfiguration{
			TopicConfigurations: configs,
		},
	})
	return err
}

func (c awsS3Client) EmptyBucket(ctx context.Context, name string) (int, error) {
	deleted := 0
	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{Bucket: aws.String(name)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, mapNotFound(err)
		}
		if len(page.Contents) == 0 {
			continue
		}
		ids := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, s3types.ObjectIdentifier{Key: obj.Key})
		}
		_, err = c.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(name),
			Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, err
		}
		deleted += len(ids)
	}
	return deleted, nil
}

func (c awsS3Client) DeleteBucket(ctx context.Context, name string) error {
	_, err := c.client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(name)})
	return mapNotFound(err)
}

func (c awsS3Client) PutObject(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return mapNotFound(err)
}

type awsSNSClient struct {
	client *sns.Client
}

func (c awsSNSClient) CreateTopic(ctx context.Context, name string, attributes map[string]string) (string, error) {
	resp, err := c.client.CreateTopic(ctx, &sns.CreateTopicInput{
		Name:       aws.String(name),
		Attributes: attributes,
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(resp.TopicArn), nil
}

func (c awsSNSClient) SetTopicPolicy(ctx context.Context, topicARN, policy string) error {
	_, err := c.client.SetTopicAttributes(ctx, &sns.SetTopicAttributesInput{
		TopicArn:       aws.String(topicARN),
		AttributeName:  aws.String("Policy"),
		AttributeValue: aws.String(policy),
	})
	return err
}

func (c awsSNSClient) Subscribe(ctx context.Context, topicARN, protocol, endpoint string) (string, error) {
	resp, err := c.client.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn:              aws.String(topicARN),
		Protocol:              aws.String(protocol),
		Endpoint:              aws.String(endpoint),
		ReturnSubscriptionArn: true,
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(resp.SubscriptionArn), nil
}

func (c awsSNSClient) ListTopics(ctx context.Context) ([]string, error) {
	var arns []string
	paginator := sns.NewListTopicsPaginator(c.client, &sns.ListTopicsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, topic := range page.Topics {
			if topic.TopicArn != nil {
				arns = append(arns, *topic.TopicArn)
			}
		}
	}
	return arns, nil
}

func (c awsSNSClient) DeleteTopic(ctx context.Context, topicARN string) error {
	_, err := c.client.DeleteTopic(ctx, &sns.DeleteTopicInput{TopicArn: aws.String(topicARN)})
	return mapNotFound(err)
}

type awsSQSClient struct {
	client *sqs.Client
}

func (c awsSQSClient) CreateQueue(ctx context.Context, name string, attributes map[string]string) (string, error) {
	resp, err := c.client.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName:  aws.String(name),
		Attributes: attributes,
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(resp.QueueUrl), nil
}

func (c awsSQSClient) QueueURL(ctx context.Context, name string) (string, error) {
	resp, err := c.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	if err != nil {
		return "", mapNotFound(err)
	}
	return aws.ToString(resp.QueueUrl), nil
}

func (c awsSQSClient) QueueAttributes(ctx context.Context, queueURL string, names ...string) (map[string]string, error) {
	attrNames := make([]sqstypes.QueueAttributeName, 0, len(names))
	for _, name := range names {
		attrNames = append(attrNames, sqstypes.QueueAttributeName(name))
	}
	resp, err := c.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(queueURL),
		AttributeNames: attrNames,
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return resp.Attributes, nil
}

func (c awsSQSClient) SetQueueAttributes(ctx context.Context, queueURL string, attributes map[string]string) error {
	_, err := c.client.SetQueueAttributes(ctx, &sqs.SetQueueAttributesInput{
		QueueUrl:   aws.String(queueURL),
		Attributes: attributes,
	})
	return err
}

func (c awsSQSClient) DeleteQueue(ctx context.Context, queueURL string) error {
	_, err := c.client.DeleteQueue(ctx, &sqs.DeleteQueueInput{QueueUrl: aws.String(queueURL)})
	return mapNotFound(err)
}

func atoi(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
