// Where: internal/stack/build.go
// What: Assemble the fan-out pipeline graph from Config.
// Why: The topology is fixed; only names and tunables vary.
package stack

import (
	"strings"

	"github.com/photo-album/eda-app/internal/constants"
)

// Template parameter names feeding the mailer environments.
const (
	ParamSESEmailFrom = "SesEmailFrom"
	ParamSESEmailTo   = "SesEmailTo"
	ParamSESRegion    = "SesRegion"
)

// OutputBucketName is the stack output exposing the upload bucket.
const OutputBucketName = "bucketName"

// Build returns the pipeline graph: the bucket notifies the topic, the topic
// fans out to the mailer and the orders queue, the orders queue feeds the
// image processor and dead-letters into the bad-orders queue, which feeds the
// rejection mailer.
func Build(cfg Config) *Stack {
	bucketID := cfg.Bucket.LogicalID
	tableID := cfg.Table.LogicalID
	topicID := cfg.Topic.LogicalID
	ordersID := cfg.Queues.Orders.LogicalID
	badOrdersID := cfg.Queues.BadOrders.LogicalID
	mailerID := cfg.Functions.Mailer.LogicalID
	failedMailerID := cfg.Functions.FailedMailer.LogicalID
	processID := cfg.Functions.ProcessImage.LogicalID

	s := &Stack{Name: cfg.StackName}

	s.Parameters = []Parameter{
		{Name: ParamSESEmailFrom, Default: cfg.Mail.From, Description: "Verified SES sender address"},
		{Name: ParamSESEmailTo, Default: cfg.Mail.To, Description: "Notification recipient address"},
		{Name: ParamSESRegion, Default: cfg.Mail.Region, Description: "Region of the SES identity"},
	}

	s.Buckets = []Bucket{{
		LogicalID:         bucketID,
		BucketName:        cfg.Bucket.Name,
		AutoDeleteObjects: boolValue(cfg.Bucket.AutoDeleteObjects),
		PublicReadAccess:  boolValue(cfg.Bucket.PublicReadAccess),
		RemovalPolicy:     RemovalDestroy,
	}}

	s.Tables = []Table{{
		LogicalID:     tableID,
		TableName:     cfg.Table.Name,
		PartitionKey:  Attribute{Name: cfg.Table.PartitionKey, Type: "S"},
		BillingMode:   strings.ToUpper(cfg.Table.BillingMode),
		RemovalPolicy: RemovalDestroy,
	}}

	s.Topics = []Topic{{
		LogicalID:   topicID,
		TopicName:   cfg.Topic.Name,
		DisplayName: cfg.Topic.DisplayName,
	}}

	s.Queues = []Queue{
		queueFrom(cfg.Queues.BadOrders, nil),
		queueFrom(cfg.Queues.Orders, &DeadLetter{
			QueueRef:        badOrdersID,
			MaxReceiveCount: cfg.Queues.MaxReceiveCount,
		}),
	}

	mailEnv := func() map[string]EnvValue {
		return map[string]EnvValue{
			constants.EnvSESEmailFrom: {Ref: ParamSESEmailFrom},
			constants.EnvSESEmailTo:   {Ref: ParamSESEmailTo},
			constants.EnvSESRegion:    {Ref: ParamSESRegion},
			constants.EnvLogLevel:     {Literal: "info"},
		}
	}
	s.Functions = []Function{
		functionFrom(cfg.Functions.Mailer, mailEnv()),
		functionFrom(cfg.Functions.FailedMailer, mailEnv()),
		functionFrom(cfg.Functions.ProcessImage, map[string]EnvValue{
			constants.EnvTableName: {Ref: tableID},
			constants.EnvTableKey:  {Literal: cfg.Table.PartitionKey},
			constants.EnvLogLevel:  {Literal: "info"},
		}),
	}

	s.Notifications = []BucketNotification{{
		BucketRef: bucketID,
		Event:     EventObjectCreated,
		TopicRef:  topicID,
	}}

	s.Subscriptions = []Subscription{
		{TopicRef: topicID, Protocol: ProtocolLambda, EndpointRef: mailerID},
		{TopicRef: topicID, Protocol: ProtocolSQS, EndpointRef: ordersID},
	}

	eventSource := func(queueID, functionID string) EventSource {
		return EventSource{
			FunctionRef:             functionID,
			QueueRef:                queueID,
			BatchSize:               cfg.EventSource.BatchSize,
			MaxBatchingWindow:       cfg.EventSource.MaxBatchingWindow,
			MaxConcurrency:          cfg.EventSource.MaxConcurrency,
			ReportBatchItemFailures: boolValue(cfg.EventSource.ReportBatchItemFailures),
		}
	}
	s.EventSources = []EventSource{
		eventSource(badOrdersID, failedMailerID),
		eventSource(ordersID, processID),
	}
	// The rejection mailer never reports partial failures: it logs and drops.
	s.EventSources[0].ReportBatchItemFailures = false

	s.Grants = []Grant{
		{FunctionRef: processID, Kind: GrantBucketRead, ResourceRef: bucketID},
		{FunctionRef: failedMailerID, Kind: GrantQueueSend, ResourceRef: badOrdersID},
		{FunctionRef: failedMailerID, Kind: GrantQueueSend, ResourceRef: ordersID},
		{FunctionRef: processID, Kind: GrantTableReadWrite, ResourceRef: tableID},
		{FunctionRef: mailerID, Kind: GrantSESSend},
		{FunctionRef: failedMailerID, Kind: GrantSESSend},
	}

	s.Outputs = []Output{{
		Name:        OutputBucketName,
		Ref:         bucketID,
		Description: "Upload bucket that triggers the pipeline",
	}}
	return s
}

func queueFrom(cfg QueueConfig, dlq *DeadLetter) Queue {
	return Queue{
		LogicalID:         cfg.LogicalID,
		QueueName:         cfg.Name,
		RetentionPeriod:   cfg.RetentionPeriod,
		VisibilityTimeout: cfg.VisibilityTimeout,
		DeadLetter:        dlq,
	}
}

func functionFrom(cfg FunctionConfig, env map[string]EnvValue) Function {
	return Function{
		LogicalID:    cfg.LogicalID,
		FunctionName: cfg.Name,
		Runtime:      pick(cfg.Runtime, goRuntime),
		Handler:      pick(cfg.Handler, goHandler),
		CodeURI:      cfg.CodeURI,
		Architecture: pick(cfg.Architecture, defaultArch),
		MemorySize:   cfg.MemorySize,
		Timeout:      cfg.Timeout,
		Environment:  env,
	}
}

// PhysicalName returns the explicit bucket name or a name derived from the logical ID.
func (b Bucket) PhysicalName() string {
	return physicalName(b.BucketName, b.LogicalID)
}

func (t Table) PhysicalName() string {
	return physicalName(t.TableName, t.LogicalID)
}

func (t Topic) PhysicalName() string {
	return physicalName(t.TopicName, t.LogicalID)
}

func (q Queue) PhysicalName() string {
	return physicalName(q.QueueName, q.LogicalID)
}

func (f Function) PhysicalName() string {
	return physicalName(f.FunctionName, f.LogicalID)
}

func physicalName(explicit, logicalID string) string {
	if explicit != "" {
		return explicit
	}
	return strings.ToLower(logicalID)
}
