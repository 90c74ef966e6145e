// Where: internal/stack/config.go
// What: Tunable parameters for the image pipeline stack.
// Why: Keep the declarative knobs (names, batching, retention) in one overridable shape.
package stack

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures every static parameter of the pipeline.
// Zero values in an overlay file keep the defaults.
type Config struct {
	StackName   string            `yaml:"stack_name,omitempty"`
	Bucket      BucketConfig      `yaml:"bucket,omitempty"`
	Table       TableConfig       `yaml:"table,omitempty"`
	Topic       TopicConfig       `yaml:"topic,omitempty"`
	Queues      QueuesConfig      `yaml:"queues,omitempty"`
	Functions   FunctionsConfig   `yaml:"functions,omitempty"`
	EventSource EventSourceConfig `yaml:"event_source,omitempty"`
	Mail        MailConfig        `yaml:"mail,omitempty"`
}

type BucketConfig struct {
	LogicalID         string `yaml:"logical_id,omitempty"`
	Name              string `yaml:"name,omitempty"`
	AutoDeleteObjects *bool  `yaml:"auto_delete_objects,omitempty"`
	PublicReadAccess  *bool  `yaml:"public_read_access,omitempty"`
}

type TableConfig struct {
	LogicalID    string `yaml:"logical_id,omitempty"`
	Name         string `yaml:"name,omitempty"`
	PartitionKey string `yaml:"partition_key,omitempty"`
	BillingMode  string `yaml:"billing_mode,omitempty"`
}

type TopicConfig struct {
	LogicalID   string `yaml:"logical_id,omitempty"`
	Name        string `yaml:"name,omitempty"`
	DisplayName string `yaml:"display_name,omitempty"`
}

type QueueConfig struct {
	LogicalID         string        `yaml:"logical_id,omitempty"`
	Name              string        `yaml:"name,omitempty"`
	RetentionPeriod   time.Duration `yaml:"retention_period,omitempty"`
	VisibilityTimeout time.Duration `yaml:"visibility_timeout,omitempty"`
}

type QueuesConfig struct {
	Orders          QueueConfig `yaml:"orders,omitempty"`
	BadOrders       QueueConfig `yaml:"bad_orders,omitempty"`
	MaxReceiveCount int         `yaml:"max_receive_count,omitempty"`
}

type FunctionConfig struct {
	LogicalID    string        `yaml:"logical_id,omitempty"`
	Name         string        `yaml:"name,omitempty"`
	Runtime      string        `yaml:"runtime,omitempty"`
	Handler      string        `yaml:"handler,omitempty"`
	CodeURI      string        `yaml:"code_uri,omitempty"`
	Architecture string        `yaml:"architecture,omitempty"`
	MemorySize   int           `yaml:"memory_size,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
}

type FunctionsConfig struct {
	Mailer       FunctionConfig `yaml:"mailer,omitempty"`
	FailedMailer FunctionConfig `yaml:"failed_mailer,omitempty"`
	ProcessImage FunctionConfig `yaml:"process_image,omitempty"`
}

type EventSourceConfig struct {
	BatchSize               int           `yaml:"batch_size,omitempty"`
	MaxBatchingWindow       time.Duration `yaml:"max_batching_window,omitempty"`
	MaxConcurrency          int           `yaml:"max_concurrency,omitempty"`
	ReportBatchItemFailures *bool         `yaml:"report_batch_item_failures,omitempty"`
}

// MailConfig holds the SES addresses handed to both mailers.
// Empty values become required template parameters.
type MailConfig struct {
	From   string `yaml:"from,omitempty"`
	To     string `yaml:"to,omitempty"`
	Region string `yaml:"region,omitempty"`
}

const (
	goRuntime       = "provided.al2023"
	goHandler       = "bootstrap"
	defaultArch     = "x86_64"
	defaultSQSBatch = 10
)

// DefaultConfig returns the parameters the pipeline was designed with.
func DefaultConfig() Config {
	return Config{
		StackName: "EDAAppStack",
		Bucket: BucketConfig{
			LogicalID:         "images",
			AutoDeleteObjects: boolPtr(true),
			PublicReadAccess:  boolPtr(false),
		},
		Table: TableConfig{
			LogicalID:    "ImagesTable",
			Name:         "ImageTable",
			PartitionKey: "imageName",
			BillingMode:  BillingPayPerRequest,
		},
		Topic: TopicConfig{
			LogicalID:   "NewImageTopic",
			DisplayName: "New Image topic",
		},
		Queues: QueuesConfig{
			Orders: QueueConfig{
				LogicalID:         "ordersqueue",
				VisibilityTimeout: 30 * time.Second,
				RetentionPeriod:   4 * 24 * time.Hour,
			},
			BadOrders: QueueConfig{
				LogicalID:         "badordersq",
				VisibilityTimeout: 30 * time.Second,
				RetentionPeriod:   30 * time.Minute,
			},
			MaxReceiveCount: 2,
		},
		Functions: FunctionsConfig{
			Mailer: FunctionConfig{
				LogicalID:  "mailerfunction",
				CodeURI:    "cmd/mailer",
				MemorySize: 1024,
				Timeout:    3 * time.Second,
			},
			FailedMailer: FunctionConfig{
				LogicalID:  "failedmailerfunction",
				CodeURI:    "cmd/rejection-mailer",
				MemorySize: 1024,
				Timeout:    3 * time.Second,
			},
			ProcessImage: FunctionConfig{
				LogicalID:  "ProcessImageFn",
				CodeURI:    "cmd/process-image",
				MemorySize: 128,
				Timeout:    15 * time.Second,
			},
		},
		EventSource: EventSourceConfig{
			BatchSize:               defaultSQSBatch,
			MaxBatchingWindow:       5 * time.Second,
			MaxConcurrency:          2,
			ReportBatchItemFailures: boolPtr(true),
		},
	}
}

// LoadConfig reads a YAML overlay from path and merges it onto DefaultConfig.
// A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read stack config: %w", err)
	}
	return ParseConfig(payload)
}

// ParseConfig merges a YAML overlay onto DefaultConfig.
func ParseConfig(payload []byte) (Config, error) {
	var overlay Config
	if err := yaml.Unmarshal(payload, &overlay); err != nil {
		return Config{}, fmt.Errorf("parse stack config: %w", err)
	}
	return Merge(DefaultConfig(), overlay), nil
}

// Merge returns base with every non-zero field of overlay applied.
func Merge(base, overlay Config) Config {
	out := base
	out.StackName = pick(overlay.StackName, base.StackName)

	out.Bucket.LogicalID = pick(overlay.Bucket.LogicalID, base.Bucket.LogicalID)
	out.Bucket.Name = pick(overlay.Bucket.Name, base.Bucket.Name)
	out.Bucket.AutoDeleteObjects = pickBool(overlay.Bucket.AutoDeleteObjects, base.Bucket.AutoDeleteObjects)
	out.Bucket.PublicReadAccess = pickBool(overlay.Bucket.PublicReadAccess, base.Bucket.PublicReadAccess)

	out.Table.LogicalID = pick(overlay.Table.LogicalID, base.Table.LogicalID)
	out.Table.Name = pick(overlay.Table.Name, base.Table.Name)
	out.Table.PartitionKey = pick(overlay.Table.PartitionKey, base.Table.PartitionKey)
	out.Table.BillingMode = pick(overlay.Table.BillingMode, base.Table.BillingMode)

	out.Topic.LogicalID = pick(overlay.Topic.LogicalID, base.Topic.LogicalID)
	out.Topic.Name = pick(overlay.Topic.Name, base.Topic.Name)
	out.Topic.DisplayName = pick(overlay.Topic.DisplayName, base.Topic.DisplayName)

	out.Queues.Orders = mergeQueue(base.Queues.Orders, overlay.Queues.Orders)
	out.Queues.BadOrders = mergeQueue(base.Queues.BadOrders, overlay.Queues.BadOrders)
	out.Queues.MaxReceiveCount = pickInt(overlay.Queues.MaxReceiveCount, base.Queues.MaxReceiveCount)

	out.Functions.Mailer = mergeFunction(base.Functions.Mailer, overlay.Functions.Mailer)
	out.Functions.FailedMailer = mergeFunction(base.Functions.FailedMailer, overlay.Functions.FailedMailer)
	out.Functions.ProcessImage = mergeFunction(base.Functions.ProcessImage, overlay.Functions.ProcessImage)

	out.EventSource.BatchSize = pickInt(overlay.EventSource.BatchSize, base.EventSource.BatchSize)
	out.EventSource.MaxBatchingWindow = pickDuration(overlay.EventSource.MaxBatchingWindow, base.EventSource.MaxBatchingWindow)
	out.EventSource.MaxConcurrency = pickInt(overlay.EventSource.MaxConcurrency, base.EventSource.MaxConcurrency)
	out.EventSource.ReportBatchItemFailures = pickBool(
		overlay.EventSource.ReportBatchItemFailures,
		base.EventSource.ReportBatchItemFailures,
	)

	out.Mail.From = pick(overlay.Mail.From, base.Mail.From)
	out.Mail.To = pick(overlay.Mail.To, base.Mail.To)
	out.Mail.Region = pick(overlay.Mail.Region, base.Mail.Region)
	return out
}

func mergeQueue(base, overlay QueueConfig) QueueConfig {
	return QueueConfig{
		LogicalID:         pick(overlay.LogicalID, base.LogicalID),
		Name:              pick(overlay.Name, base.Name),
		RetentionPeriod:   pickDuration(overlay.RetentionPeriod, base.RetentionPeriod),
		VisibilityTimeout: pickDuration(overlay.VisibilityTimeout, base.VisibilityTimeout),
	}
}

func mergeFunction(base, overlay FunctionConfig) FunctionConfig {
	return FunctionConfig{
		LogicalID:    pick(overlay.LogicalID, base.LogicalID),
		Name:         pick(overlay.Name, base.Name),
		Runtime:      pick(overlay.Runtime, base.Runtime),
		Handler:      pick(overlay.Handler, base.Handler),
		CodeURI:      pick(overlay.CodeURI, base.CodeURI),
		Architecture: pick(overlay.Architecture, base.Architecture),
		MemorySize:   pickInt(overlay.MemorySize, base.MemorySize),
		Timeout:      pickDuration(overlay.Timeout, base.Timeout),
	}
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func pickInt(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}

func pickDuration(value, fallback time.Duration) time.Duration {
	if value != 0 {
		return value
	}
	return fallback
}

func pickBool(value, fallback *bool) *bool {
	if value != nil {
		return value
	}
	return fallback
}

func boolPtr(v bool) *bool {
	return &v
}

func boolValue(v *bool) bool {
	return v != nil && *v
}
