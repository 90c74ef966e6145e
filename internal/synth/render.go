// Where: internal/synth/render.go
// What: Render the resource graph as an AWS SAM template.
// Why: Deployment is delegated to CloudFormation; this is the only artifact it needs.
package synth

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/photo-album/eda-app/internal/stack"
	"gopkg.in/yaml.v3"
)

const (
	templateFormatVersion = "2010-09-09"
	samTransform          = "AWS::Serverless-2016-10-31"
	policyVersion         = "2012-10-17"
	goBuildMethod         = "go1.x"
)

// Resource type names emitted by Render.
const (
	TypeBucket       = "AWS::S3::Bucket"
	TypeTable        = "AWS::DynamoDB::Table"
	TypeTopic        = "AWS::SNS::Topic"
	TypeTopicPolicy  = "AWS::SNS::TopicPolicy"
	TypeSubscription = "AWS::SNS::Subscription"
	TypeQueue        = "AWS::SQS::Queue"
	TypeQueuePolicy  = "AWS::SQS::QueuePolicy"
	TypeFunction     = "AWS::Serverless::Function"
)

// AutoDeleteTag marks buckets whose objects are purged on teardown.
const AutoDeleteTag = "eda:auto-delete-objects"

// Render validates s and returns the SAM template YAML.
func Render(s *stack.Stack) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	root := newObject().
		set("AWSTemplateFormatVersion", templateFormatVersion).
		set("Transform", samTransform).
		set("Description", fmt.Sprintf("%s: image upload fan-out with dead-letter notifications", s.Name))

	if params := renderParameters(s); !params.empty() {
		root.set("Parameters", params)
	}
	root.set("Resources", renderResources(s))
	if outputs := renderOutputs(s); !outputs.empty() {
		root.set("Outputs", outputs)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root.node}}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	return buf.Bytes(), nil
}

func renderParameters(s *stack.Stack) *object {
	out := newObject()
	for _, p := range s.Parameters {
		param := newObject().set("Type", "String")
		if p.Description != "" {
			param.set("Description", p.Description)
		}
		if p.Default != "" {
			param.set("Default", p.Default)
		}
		out.set(p.Name, param)
	}
	return out
}

func renderOutputs(s *stack.Stack) *object {
	out := newObject()
	for _, o := range s.Outputs {
		entry := newObject()
		if o.Description != "" {
			entry.set("Description", o.Description)
		}
		entry.set("Value", ref(o.Ref))
		out.set(o.Name, entry)
	}
	return out
}

func renderResources(s *stack.Stack) *object {
	out := newObject()
	for _, b := range s.Buckets {
		out.set(b.LogicalID, renderBucket(s, b))
	}
	for _, t := range s.Tables {
		out.set(t.LogicalID, renderTable(t))
	}
	for _, t := range s.Topics {
		out.set(t.LogicalID, renderTopic(t))
		if publishers := bucketsPublishingTo(s, t.LogicalID); len(publishers) > 0 {
			out.set(TopicPolicyID(t.LogicalID), renderTopicPolicy(t))
		}
	}
	for _, q := range s.Queues {
		out.set(q.LogicalID, renderQueue(q))
		if topics := topicsFeeding(s, q.LogicalID); len(topics) > 0 {
			out.set(QueuePolicyID(q.LogicalID), renderQueuePolicy(q, topics))
		}
	}
	for _, sub := range s.Subscriptions {
		if sub.Protocol != stack.ProtocolSQS {
			continue
		}
		out.set(SubscriptionID(sub), renderQueueSubscription(sub))
	}
	for _, f := range s.Functions {
		out.set(f.LogicalID, renderFunction(s, f))
	}
	return out
}

// TopicPolicyID names the policy letting buckets publish to a topic.
func TopicPolicyID(topicID string) string {
	return topicID + "Policy"
}

// QueuePolicyID names the policy letting topics send to a queue.
func QueuePolicyID(queueID string) string {
	return queueID + "Policy"
}

// SubscriptionID names the queue subscription resource.
func SubscriptionID(sub stack.Subscription) string {
	return sub.TopicRef + sub.EndpointRef + "Subscription"
}

func renderBucket(s *stack.Stack, b stack.Bucket) *object {
	props := newObject()
	if b.BucketName != "" {
		props.set("BucketName", b.BucketName)
	}
	if !b.PublicReadAccess {
		props.set("PublicAccessBlockConfiguration", newObject().
			set("BlockPublicAcls", true).
			set("BlockPublicPolicy", true).
			set("IgnorePublicAcls", true).
			set("RestrictPublicBuckets", true))
	}

	var topicConfigs []any
	var dependsOn []string
	for _, n := range s.Notifications {
		if n.BucketRef != b.LogicalID {
			continue
		}
		topicConfigs = append(topicConfigs, newObject().
			set("Event", n.Event).
			set("Topic", ref(n.TopicRef)))
		dependsOn = appendUnique(dependsOn, TopicPolicyID(n.TopicRef))
	}
	if len(topicConfigs) > 0 {
		props.set("NotificationConfiguration", newObject().set("TopicConfigurations", topicConfigs))
	}
	if b.AutoDeleteObjects {
		props.set("Tags", []any{newObject().set("Key", AutoDeleteTag).set("Value", "true")})
	}

	res := newObject().set("Type", TypeBucket)
	if len(dependsOn) > 0 {
		res.set("DependsOn", dependsOn)
	}
	setRemoval(res, b.RemovalPolicy)
	return res.set("Properties", props)
}

func renderTable(t stack.Table) *object {
	props := newObject()
	if t.TableName != "" {
		props.set("TableName", t.TableName)
	}
	props.set("BillingMode", t.BillingMode)
	props.set("AttributeDefinitions", []any{newObject().
		set("AttributeName", t.PartitionKey.Name).
		set("AttributeType", t.PartitionKey.Type)})
	props.set("KeySchema", []any{newObject().
		set("AttributeName", t.PartitionKey.Name).
		set("KeyType", "HASH")})
	if t.BillingMode == stack.BillingProvisioned {
		props.set("ProvisionedThroughput", newObject().
			set("ReadCapacityUnits", 1).
			set("WriteCapacityUnits", 1))
	}

	res := newObject().set("Type", TypeTable)
	setRemoval(res, t.RemovalPolicy)
	return res.set("Properties", props)
}

func renderTopic(t stack.Topic) *object {
	props := newObject()
	if t.TopicName != "" {
		props.set("TopicName", t.TopicName)
	}
	if t.DisplayName != "" {
		props.set("DisplayName", t.DisplayName)
	}
	return newObject().set("Type", TypeTopic).set("Properties", props)
}

func renderTopicPolicy(t stack.Topic) *object {
	statement := newObject().
		set("Effect", "Allow").
		set("Principal", newObject().set("Service", "s3.amazonaws.com")).
		set("Action", "sns:Publish").
		set("Resource", ref(t.LogicalID)).
		set("Condition", newObject().set("StringEquals",
			newObject().set("aws:SourceAccount", ref("AWS::AccountId"))))
	return newObject().
		set("Type", TypeTopicPolicy).
		set("Properties", newObject().
			set("Topics", []any{ref(t.LogicalID)}).
			set("PolicyDocument", policyDocument(statement)))
}

func renderQueue(q stack.Queue) *object {
	props := newObject()
	if q.QueueName != "" {
		props.set("QueueName", q.QueueName)
	}
	if q.RetentionPeriod > 0 {
		props.set("MessageRetentionPeriod", seconds(q.RetentionPeriod))
	}
	if q.VisibilityTimeout > 0 {
		props.set("VisibilityTimeout", seconds(q.VisibilityTimeout))
	}
	if q.DeadLetter != nil {
		props.set("RedrivePolicy", newObject().
			set("deadLetterTargetArn", getAtt(q.DeadLetter.QueueRef, "Arn")).
			set("maxReceiveCount", q.DeadLetter.MaxReceiveCount))
	}
	res := newObject().set("Type", TypeQueue)
	setRemoval(res, stack.RemovalDestroy)
	return res.set("Properties", props)
}

func renderQueuePolicy(q stack.Queue, topics []string) *object {
	var arns []any
	for _, topic := range topics {
		arns = append(arns, ref(topic))
	}
	var source any = arns
	if len(arns) == 1 {
		source = arns[0]
	}
	statement := newObject().
		set("Effect", "Allow").
		set("Principal", newObject().set("Service", "sns.amazonaws.com")).
		set("Action", "sqs:SendMessage").
		set("Resource", getAtt(q.LogicalID, "Arn")).
		set("Condition", newObject().set("ArnEquals", newObject().set("aws:SourceArn", source)))
	return newObject().
		set("Type", TypeQueuePolicy).
		set("Properties", newObject().
			set("Queues", []any{ref(q.LogicalID)}).
			set("PolicyDocument", policyDocument(statement)))
}

func renderQueueSubscription(sub stack.Subscription) *object {
	return newObject().
		set("Type", TypeSubscription).
		set("Properties", newObject().
			set("Protocol", stack.ProtocolSQS).
			set("TopicArn", ref(sub.TopicRef)).
			set("Endpoint", getAtt(sub.EndpointRef, "Arn")))
}

func renderFunction(s *stack.Stack, f stack.Function) *object {
	props := newObject()
	if f.FunctionName != "" {
		props.set("FunctionName", f.FunctionName)
	}
	props.
		set("CodeUri", f.CodeURI).
		set("Handler", f.Handler).
		set("Runtime", f.Runtime).
		set("Architectures", []string{f.Architecture}).
		set("MemorySize", f.MemorySize).
		set("Timeout", seconds(f.Timeout))

	if len(f.Environment) > 0 {
		vars := map[string]any{}
		for key, value := range f.Environment {
			if value.Ref != "" {
				vars[key] = ref(value.Ref)
				continue
			}
			vars[key] = value.Literal
		}
		props.set("Environment", newObject().set("Variables", vars))
	}

	if statements := grantStatements(s, f.LogicalID); len(statements) > 0 {
		props.set("Policies", []any{newObject().set("Statement", statements)})
	}

	events := newObject()
	for _, sub := range s.SubscriptionsTo(f.LogicalID) {
		events.set(sub.TopicRef, newObject().
			set("Type", "SNS").
			set("Properties", newObject().set("Topic", ref(sub.TopicRef))))
	}
	for _, es := range s.EventSourcesFor(f.LogicalID) {
		events.set(es.QueueRef, renderSQSEvent(es))
	}
	if !events.empty() {
		props.set("Events", events)
	}

	return newObject().
		set("Type", TypeFunction).
		set("Metadata", newObject().set("BuildMethod", goBuildMethod)).
		set("Properties", props)
}

func renderSQSEvent(es stack.EventSource) *object {
	props := newObject().
		set("Queue", getAtt(es.QueueRef, "Arn")).
		set("BatchSize", es.BatchSize)
	if es.MaxBatchingWindow > 0 {
		props.set("MaximumBatchingWindowInSeconds", seconds(es.MaxBatchingWindow))
	}
	if es.MaxConcurrency > 0 {
		props.set("ScalingConfig", newObject().set("MaximumConcurrency", es.MaxConcurrency))
	}
	if es.ReportBatchItemFailures {
		props.set("FunctionResponseTypes", []string{"ReportBatchItemFailures"})
	}
	return newObject().set("Type", "SQS").set("Properties", props)
}

func grantStatements(s *stack.Stack, functionID string) []any {
	var out []any
	for _, g := range s.GrantsFor(functionID) {
		statement := newObject().
			set("Effect", "Allow").
			set("Action", g.Actions())
		switch g.Kind {
		case stack.GrantBucketRead:
			statement.set("Resource", []any{
				getAtt(g.ResourceRef, "Arn"),
				sub("${" + g.ResourceRef + ".Arn}/*"),
			})
		case stack.GrantQueueSend:
			statement.set("Resource", getAtt(g.ResourceRef, "Arn"))
		case stack.GrantTableReadWrite:
			statement.set("Resource", []any{
				getAtt(g.ResourceRef, "Arn"),
				sub("${" + g.ResourceRef + ".Arn}/index/*"),
			})
		default:
			statement.set("Resource", "*")
		}
		out = append(out, statement)
	}
	return out
}

func policyDocument(statements ...*object) *object {
	list := make([]any, 0, len(statements))
	for _, st := range statements {
		list = append(list, st)
	}
	return newObject().set("Version", policyVersion).set("Statement", list)
}

func setRemoval(res *object, policy string) {
	if policy == "" {
		return
	}
	res.set("DeletionPolicy", policy).set("UpdateReplacePolicy", policy)
}

func bucketsPublishingTo(s *stack.Stack, topicID string) []string {
	var out []string
	for _, n := range s.Notifications {
		if n.TopicRef == topicID {
			out = appendUnique(out, n.BucketRef)
		}
	}
	return out
}

func topicsFeeding(s *stack.Stack, queueID string) []string {
	var out []string
	for _, sub := range s.Subscriptions {
		if sub.Protocol == stack.ProtocolSQS && sub.EndpointRef == queueID {
			out = appendUnique(out, sub.TopicRef)
		}
	}
	sort.Strings(out)
	return out
}

func appendUnique(list []string, value string) []string {
	for _, item := range list {
		if item == value {
			return list
		}
	}
	return append(list, value)
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
