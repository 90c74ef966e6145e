// Where: internal/synth/render_test.go
// What: Tests for template rendering and schema validation.
// Why: The template is the deploy artifact; its shape must stay stable.
package synth

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/photo-album/eda-app/internal/stack"
	"gopkg.in/yaml.v3"
)

func renderDefault(t *testing.T) (string, map[string]any) {
	t.Helper()
	content, err := Synthesize(stack.Build(stack.DefaultConfig()))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		t.Fatalf("rendered template is not YAML: %v", err)
	}
	return string(content), doc
}

func resource(t *testing.T, doc map[string]any, id string) map[string]any {
	t.Helper()
	resources, ok := doc["Resources"].(map[string]any)
	if !ok {
		t.Fatalf("missing Resources section")
	}
	res, ok := resources[id].(map[string]any)
	if !ok {
		t.Fatalf("missing resource %s", id)
	}
	return res
}

func props(t *testing.T, doc map[string]any, id string) map[string]any {
	t.Helper()
	p, ok := resource(t, doc, id)["Properties"].(map[string]any)
	if !ok {
		t.Fatalf("missing properties for %s", id)
	}
	return p
}

func TestRenderHeader(t *testing.T) {
	content, doc := renderDefault(t)
	if !strings.HasPrefix(content, "AWSTemplateFormatVersion: \"2010-09-09\"\n") {
		t.Fatalf("unexpected header: %q", content[:60])
	}
	if doc["Transform"] != "AWS::Serverless-2016-10-31" {
		t.Fatalf("unexpected transform: %v", doc["Transform"])
	}
	outputs := doc["Outputs"].(map[string]any)
	value := outputs["bucketName"].(map[string]any)["Value"].(map[string]any)
	if value["Ref"] != "images" {
		t.Fatalf("unexpected bucketName output: %v", value)
	}
}

func TestRenderResourceTypes(t *testing.T) {
	_, doc := renderDefault(t)
	want := map[string]string{
		"images":                               TypeBucket,
		"ImagesTable":                          TypeTable,
		"NewImageTopic":                        TypeTopic,
		"NewImageTopicPolicy":                  TypeTopicPolicy,
		"badordersq":                           TypeQueue,
		"ordersqueue":                          TypeQueue,
		"ordersqueuePolicy":                    TypeQueuePolicy,
		"NewImageTopicordersqueueSubscription": TypeSubscription,
		"mailerfunction":                       TypeFunction,
		"failedmailerfunction":                 TypeFunction,
		"ProcessImageFn":                       TypeFunction,
	}
	resources := doc["Resources"].(map[string]any)
	if len(resources) != len(want) {
		t.Fatalf("unexpected resource count: %d", len(resources))
	}
	for id, typ := range want {
		if got := resource(t, doc, id)["Type"]; got != typ {
			t.Fatalf("%s: got type %v, want %s", id, got, typ)
		}
	}
}

func TestRenderBucketNotification(t *testing.T) {
	_, doc := renderDefault(t)
	bucket := props(t, doc, "images")
	configs := bucket["NotificationConfiguration"].(map[string]any)["TopicConfigurations"].([]any)
	if len(configs) != 1 {
		t.Fatalf("expected one topic configuration, got %d", len(configs))
	}
	cfg := configs[0].(map[string]any)
	if cfg["Event"] != "s3:ObjectCreated:*" {
		t.Fatalf("unexpected event: %v", cfg["Event"])
	}
	if cfg["Topic"].(map[string]any)["Ref"] != "NewImageTopic" {
		t.Fatalf("unexpected topic: %v", cfg["Topic"])
	}
	if deps := resource(t, doc, "images")["DependsOn"].([]any); deps[0] != "NewImageTopicPolicy" {
		t.Fatalf("expected bucket to depend on topic policy, got %v", deps)
	}
	if _, ok := bucket["PublicAccessBlockConfiguration"]; !ok {
		t.Fatalf("expected public access block on private bucket")
	}
}

func TestRenderRedrivePolicy(t *testing.T) {
	_, doc := renderDefault(t)
	orders := props(t, doc, "ordersqueue")
	redrive := orders["RedrivePolicy"].(map[string]any)
	if redrive["maxReceiveCount"] != 2 {
		t.Fatalf("unexpected maxReceiveCount: %v", redrive["maxReceiveCount"])
	}
	target := redrive["deadLetterTargetArn"].(map[string]any)["Fn::GetAtt"].([]any)
	if target[0] != "badordersq" || target[1] != "Arn" {
		t.Fatalf("unexpected dead-letter target: %v", target)
	}
	if got := props(t, doc, "badordersq")["MessageRetentionPeriod"]; got != 1800 {
		t.Fatalf("unexpected retention: %v", got)
	}
}

func TestRenderFunctionEvents(t *testing.T) {
	_, doc := renderDefault(t)

	process := props(t, doc, "ProcessImageFn")
	if process["MemorySize"] != 128 || process["Timeout"] != 15 {
		t.Fatalf("unexpected sizing: %v %v", process["MemorySize"], process["Timeout"])
	}
	event := process["Events"].(map[string]any)["ordersqueue"].(map[string]any)
	if event["Type"] != "SQS" {
		t.Fatalf("unexpected event type: %v", event["Type"])
	}
	ep := event["Properties"].(map[string]any)
	if ep["MaximumBatchingWindowInSeconds"] != 5 {
		t.Fatalf("unexpected batching window: %v", ep["MaximumBatchingWindowInSeconds"])
	}
	if ep["ScalingConfig"].(map[string]any)["MaximumConcurrency"] != 2 {
		t.Fatalf("unexpected concurrency: %v", ep["ScalingConfig"])
	}
	if types := ep["FunctionResponseTypes"].([]any); types[0] != "ReportBatchItemFailures" {
		t.Fatalf("unexpected response types: %v", types)
	}
	env := process["Environment"].(map[string]any)["Variables"].(map[string]any)
	if env["TABLE_NAME"].(map[string]any)["Ref"] != "ImagesTable" {
		t.Fatalf("unexpected TABLE_NAME: %v", env["TABLE_NAME"])
	}

	mailer := props(t, doc, "mailerfunction")
	sns := mailer["Events"].(map[string]any)["NewImageTopic"].(map[string]any)
	if sns["Type"] != "SNS" {
		t.Fatalf("unexpected mailer event: %v", sns)
	}

	failed := props(t, doc, "failedmailerfunction")
	fe := failed["Events"].(map[string]any)["badordersq"].(map[string]any)["Properties"].(map[string]any)
	if _, ok := fe["FunctionResponseTypes"]; ok {
		t.Fatalf("rejection mailer should not report batch item failures")
	}
}

func TestRenderSESPolicy(t *testing.T) {
	content, doc := renderDefault(t)
	for _, id := range []string{"mailerfunction", "failedmailerfunction"} {
		policies := props(t, doc, id)["Policies"].([]any)
		statements := policies[0].(map[string]any)["Statement"].([]any)
		found := false
		for _, raw := range statements {
			st := raw.(map[string]any)
			if st["Resource"] == "*" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected SES statement on %s", id)
		}
	}
	if !strings.Contains(content, "ses:SendTemplatedEmail") {
		t.Fatalf("expected SES actions in template")
	}
}

func TestRenderDeterministic(t *testing.T) {
	first, err := Render(stack.Build(stack.DefaultConfig()))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := Render(stack.Build(stack.DefaultConfig()))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical output across renders")
	}
}

func TestRenderRejectsInvalidStack(t *testing.T) {
	s := stack.Build(stack.DefaultConfig())
	s.Queue("ordersqueue").DeadLetter.MaxReceiveCount = 0
	if _, err := Render(s); !errors.Is(err, stack.ErrInvalidStack) {
		t.Fatalf("expected ErrInvalidStack, got %v", err)
	}
}

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	cases := map[string]string{
		"redrive": `AWSTemplateFormatVersion: "2010-09-09"
Transform: AWS::Serverless-2016-10-31
Resources:
  queue:
    Type: AWS::SQS::Queue
    Properties:
      RedrivePolicy:
        deadLetterTargetArn: arn:aws:sqs:eu-west-1:000000000000:dlq
        maxReceiveCount: 0
`,
		"concurrency": `AWSTemplateFormatVersion: "2010-09-09"
Transform: AWS::Serverless-2016-10-31
Resources:
  fn:
    Type: AWS::Serverless::Function
    Properties:
      CodeUri: cmd/mailer
      Handler: bootstrap
      Runtime: provided.al2023
      Events:
        q:
          Type: SQS
          Properties:
            Queue: arn:aws:sqs:eu-west-1:000000000000:q
            ScalingConfig:
              MaximumConcurrency: 1
`,
		"logical id": `AWSTemplateFormatVersion: "2010-09-09"
Transform: AWS::Serverless-2016-10-31
Resources:
  bad-orders-q:
    Type: AWS::SQS::Queue
    Properties: {}
`,
		"unknown type": `AWSTemplateFormatVersion: "2010-09-09"
Transform: AWS::Serverless-2016-10-31
Resources:
  thing:
    Type: AWS::EC2::Instance
    Properties: {}
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if err := Validate([]byte(content)); err == nil {
				t.Fatalf("expected schema violation")
			}
		})
	}
}

func TestValidateRejectsMalformedYAML(t *testing.T) {
	if err := Validate([]byte("Resources: [")); err == nil {
		t.Fatalf("expected conversion error")
	}
}
