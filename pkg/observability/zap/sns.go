package zap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/theory-cloud/cfkeypair/pkg/observability"
)

const (
	EnvTopicARN = "CFKEYPAIR_ERROR_NOTIFICATIONS_TOPIC_ARN"
	EnvSubject  = "CFKEYPAIR_ERROR_NOTIFICATIONS_SUBJECT"
)

// Generic topic variables, consulted in order after EnvTopicARN.
var fallbackTopicARNVars = []string{
	"ERROR_NOTIFICATION_SNS_TOPIC_ARN",
	"ERROR_NOTIFICATIONS_TOPIC_ARN",
	"SNS_ERROR_TOPIC_ARN",
}

const (
	defaultSubject = "cfkeypair error"

	// SNS limits: subjects are printable ASCII under 100 characters, messages at most 256 KiB.
	maxSubjectLength = 99
	maxMessageBytes  = 256 * 1024
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes Error entries to an SNS topic as JSON.
type SNSNotifier struct {
	client   snsAPI
	topicARN string
	subject  string
	source   map[string]string
}

var _ observability.ErrorNotifier = (*SNSNotifier)(nil)

func NewSNSNotifier(client snsAPI, topicARN, subject string) *SNSNotifier {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = defaultSubject
	}
	return &SNSNotifier{
		client:   client,
		topicARN: strings.TrimSpace(topicARN),
		subject:  subject,
		source: map[string]string{
			"function_name": os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
			"region":        os.Getenv("AWS_REGION"),
		},
	}
}

// NotifierFromEnv builds an SNSNotifier when a topic variable is set and returns nil otherwise.
func NotifierFromEnv(ctx context.Context, lookup func(string) (string, bool)) (observability.ErrorNotifier, error) {
	topicARN := firstSet(lookup, append([]string{EnvTopicARN}, fallbackTopicARNVars...))
	if topicARN == "" {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("observability/zap: load aws config: %w", err)
	}
	return NewSNSNotifier(sns.NewFromConfig(cfg), topicARN, firstSet(lookup, []string{EnvSubject})), nil
}

type snsMessage struct {
	Entry  observability.LogEntry `json:"entry"`
	Source map[string]string      `json:"source"`
}

func (n *SNSNotifier) Notify(ctx context.Context, entry observability.LogEntry) error {
	if n == nil || n.client == nil {
		return errors.New("observability/zap: sns notifier is nil")
	}
	if n.topicARN == "" {
		return errors.New("observability/zap: sns topic arn is empty")
	}

	body, err := n.message(entry)
	if err != nil {
		return err
	}
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(n.subjectFor(entry)),
		Message:  aws.String(body),
	})
	return err
}

// message keeps the body valid JSON under the SNS limit by dropping fields when it would overflow.
func (n *SNSNotifier) message(entry observability.LogEntry) (string, error) {
	msg := snsMessage{Entry: entry, Source: n.source}
	body, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	if len(body) <= maxMessageBytes {
		return string(body), nil
	}

	msg.Entry.Fields = map[string]any{"fields_omitted": len(entry.Fields)}
	if body, err = json.Marshal(msg); err != nil {
		return "", err
	}
	if len(body) > maxMessageBytes {
		return "", fmt.Errorf("observability/zap: notification exceeds %d bytes", maxMessageBytes)
	}
	return string(body), nil
}

func (n *SNSNotifier) subjectFor(entry observability.LogEntry) string {
	subject := n.subject
	if id := entry.Invocation.LogicalResourceID; id != "" {
		subject += " (" + id + ")"
	}
	return asciiSubject(subject)
}

func asciiSubject(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			continue
		}
		if b.Len() == maxSubjectLength {
			break
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return defaultSubject
	}
	return b.String()
}

func firstSet(lookup func(string) (string, bool), keys []string) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range keys {
		if v, ok := lookup(key); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
