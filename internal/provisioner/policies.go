package provisioner

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string                    `json:"Effect"`
	Principal map[string]string         `json:"Principal"`
	Action    string                    `json:"Action"`
	Resource  string                    `json:"Resource"`
	Condition map[string]map[string]any `json:"Condition,omitempty"`
}

func bucketARN(name string) string {
	return fmt.Sprintf("arn:aws:s3:::%s", name)
}

// topicPolicy allows the given buckets to publish to the topic.
func topicPolicy(topicARN string, bucketARNs []string) (string, error) {
	return marshalPolicy(policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string]string{"Service": "s3.amazonaws.com"},
			Action:    "sns:Publish",
			Resource:  topicARN,
			Condition: map[string]map[string]any{
				"ArnLike": {"aws:SourceArn": bucketARNs},
			},
		}},
	})
}

// queuePolicy allows the given topics to deliver into the queue.
func queuePolicy(queueARN string, topicARNs []string) (string, error) {
	return marshalPolicy(policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string]string{"Service": "sns.amazonaws.com"},
			Action:    "sqs:SendMessage",
			Resource:  queueARN,
			Condition: map[string]map[string]any{
				"ArnEquals": {"aws:SourceArn": topicARNs},
			},
		}},
	})
}

// redrivePolicy renders the SQS RedrivePolicy attribute.
func redrivePolicy(targetARN string, maxReceiveCount int) (string, error) {
	if maxReceiveCount < 1 {
		return "", fmt.Errorf("maxReceiveCount must be positive, got %d", maxReceiveCount)
	}
	return marshalPolicy(map[string]string{
		"deadLetterTargetArn": targetARN,
		"maxReceiveCount":     strconv.Itoa(maxReceiveCount),
	})
}

func marshalPolicy(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
