package stack

// GrantKind names a static least-privilege permission set.
type GrantKind string

const (
	GrantBucketRead     GrantKind = "bucket-read"
	GrantQueueSend      GrantKind = "queue-send"
	GrantTableReadWrite GrantKind = "table-read-write"
	GrantSESSend        GrantKind = "ses-send"
)

// Grant gives a function a permission set on a resource.
// ResourceRef is empty for account-wide grants such as SES sending.
type Grant struct {
	FunctionRef string
	Kind        GrantKind
	ResourceRef string
}

// Actions returns the IAM actions implied by the grant kind.
func (g Grant) Actions() []string {
	switch g.Kind {
	case GrantBucketRead:
		return []string{"s3:GetObject*", "s3:GetBucket*", "s3:List*"}
	case GrantQueueSend:
		return []string{"sqs:SendMessage", "sqs:GetQueueAttributes", "sqs:GetQueueUrl"}
	case GrantTableReadWrite:
		return []string{
			"dynamodb:BatchGetItem",
			"dynamodb:BatchWriteItem",
			"dynamodb:ConditionCheckItem",
			"dynamodb:DeleteItem",
			"dynamodb:DescribeTable",
			"dynamodb:GetItem",
			"dynamodb:PutItem",
			"dynamodb:Query",
			"dynamodb:Scan",
			"dynamodb:UpdateItem",
		}
	case GrantSESSend:
		return []string{"ses:SendEmail", "ses:SendRawEmail", "ses:SendTemplatedEmail"}
	default:
		return nil
	}
}

// ResourceKind returns the resource kind the grant must target, or "" for none.
func (g Grant) ResourceKind() string {
	switch g.Kind {
	case GrantBucketRead:
		return "bucket"
	case GrantQueueSend:
		return "queue"
	case GrantTableReadWrite:
		return "table"
	default:
		return ""
	}
}
