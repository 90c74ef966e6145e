// Where: internal/handlers/imageprocessor/imageprocessor.go
// What: Orders-queue consumer that records uploaded images in the lookup table.
// Why: Unsupported uploads fail their message so the queue dead-letters them.
package imageprocessor

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/photo-album/eda-app/internal/envelope"
	"go.uber.org/zap"
)

// ErrUnsupportedImageType marks objects whose extension is not accepted.
var ErrUnsupportedImageType = errors.New("unsupported image type")

const imageNameAttribute = "imageName"

var contentTypes = map[string]string{
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ObjectAPI is the subset of the S3 client used to read object metadata.
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// TableAPI is the subset of the DynamoDB client used to record images.
type TableAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Image is the item stored per accepted object.
type Image struct {
	ImageName   string `dynamodbav:"imageName"`
	Bucket      string `dynamodbav:"bucket"`
	Size        int64  `dynamodbav:"size"`
	ContentType string `dynamodbav:"contentType,omitempty"`
	ETag        string `dynamodbav:"eTag,omitempty"`
	UploadedAt  string `dynamodbav:"uploadedAt"`
}

type Handler struct {
	Objects      ObjectAPI
	Table        TableAPI
	TableName    string
	PartitionKey string
	Logger       *zap.Logger
	Now          func() time.Time
}

// New returns a Handler keyed on imageName unless partitionKey overrides it.
func New(objects ObjectAPI, table TableAPI, tableName, partitionKey string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if partitionKey == "" {
		partitionKey = imageNameAttribute
	}
	return &Handler{
		Objects:      objects,
		Table:        table,
		TableName:    tableName,
		PartitionKey: partitionKey,
		Logger:       logger,
		Now:          time.Now,
	}
}

// ContentType returns the MIME type for an accepted key, or
// ErrUnsupportedImageType. Extensions are matched case-insensitively.
func ContentType(key string) (string, error) {
	ext := strings.ToLower(path.Ext(key))
	if ct, ok := contentTypes[ext]; ok {
		return ct, nil
	}
	if ext == "" {
		ext = "(none)"
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedImageType, ext)
}

// Handle processes every record and reports the ones that failed so that
// only those are redelivered.
func (h *Handler) Handle(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, record := range event.Records {
		log := h.Logger.With(zap.String("messageId", record.MessageId))
		if err := h.processRecord(ctx, log, record); err != nil {
			log.Error("failed to process message", zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: record.MessageId,
			})
		}
	}
	return resp, nil
}

func (h *Handler) processRecord(ctx context.Context, log *zap.Logger, record events.SQSMessage) error {
	_, objects, err := envelope.ObjectsFromQueueBody(record.Body)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		log.Info("notification carries no objects")
		return nil
	}
	for _, obj := range objects {
		if err := h.processObject(ctx, log, obj); err != nil {
			return fmt.Errorf("%s: %w", obj.URL(), err)
		}
	}
	return nil
}

func (h *Handler) processObject(ctx context.Context, log *zap.Logger, obj envelope.ObjectRef) error {
	contentType, err := ContentType(obj.Key)
	if err != nil {
		return err
	}

	head, err := h.Objects.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return fmt.Errorf("head object: %w", err)
	}

	img := Image{
		ImageName:   obj.Key,
		Bucket:      obj.Bucket,
		Size:        obj.Size,
		ContentType: contentType,
		ETag:        strings.Trim(obj.ETag, `"`),
		UploadedAt:  h.uploadedAt(obj, head).UTC().Format(time.RFC3339),
	}
	if head.ContentLength != nil {
		img.Size = aws.ToInt64(head.ContentLength)
	}
	if head.ContentType != nil && aws.ToString(head.ContentType) != "" {
		img.ContentType = aws.ToString(head.ContentType)
	}
	if head.ETag != nil {
		img.ETag = strings.Trim(aws.ToString(head.ETag), `"`)
	}

	item, err := h.marshal(img)
	if err != nil {
		return err
	}
	_, err = h.Table.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(h.TableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#key)"),
		ExpressionAttributeNames: map[string]string{"#key": h.PartitionKey},
	})
	var conditional *types.ConditionalCheckFailedException
	switch {
	case errors.As(err, &conditional):
		log.Info("image already recorded", zap.String("bucket", obj.Bucket), zap.String("key", obj.Key))
		return nil
	case err != nil:
		return fmt.Errorf("put item: %w", err)
	}
	log.Info("recorded image",
		zap.String("bucket", obj.Bucket),
		zap.String("key", obj.Key),
		zap.Int64("size", img.Size),
		zap.String("contentType", img.ContentType),
	)
	return nil
}

func (h *Handler) marshal(img Image) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(img)
	if err != nil {
		return nil, fmt.Errorf("marshal image: %w", err)
	}
	if h.PartitionKey != imageNameAttribute {
		item[h.PartitionKey] = item[imageNameAttribute]
		delete(item, imageNameAttribute)
	}
	return item, nil
}

func (h *Handler) uploadedAt(obj envelope.ObjectRef, head *s3.HeadObjectOutput) time.Time {
	if head.LastModified != nil {
		return *head.LastModified
	}
	if !obj.EventTime.IsZero() {
		return obj.EventTime
	}
	return h.Now()
}
