package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
)

var (
	_ port.DecisionNotifier = (*SNSNotifier)(nil)
	_ port.DecisionNotifier = (*LogNotifier)(nil)
)

// SNSPublisher is the part of the SNS client the notifier uses.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes decision records to an SNS topic as JSON. Subject
// type and decision are set as message attributes so subscribers can filter.
type SNSNotifier struct {
	client   SNSPublisher
	topicARN string
	logger   *slog.Logger
}

func NewSNSNotifier(client SNSPublisher, topicARN string, logger *slog.Logger) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN, logger: logger}
}

// NewSNSClient loads the default AWS credential chain for region.
func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return sns.NewFromConfig(cfg), nil
}

func (n *SNSNotifier) NotifyDecision(ctx context.Context, record model.DecisionRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal decision record %s: %w", record.CaseID, err)
	}

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(fmt.Sprintf("Verification %s: %s", record.SubjectType, record.Decision)),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"subject_type": stringAttribute(record.SubjectType),
			"decision":     stringAttribute(record.Decision),
		},
	})
	if err != nil {
		return fmt.Errorf("publish decision %s to sns: %w", record.CaseID, err)
	}

	n.logger.InfoContext(ctx, "decision notification sent",
		"case_id", record.CaseID,
		"decision", record.Decision,
		"message_id", aws.ToString(out.MessageId),
	)
	return nil
}

func stringAttribute(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}

// LogNotifier writes decision records to the log. It is used when no SNS
// topic is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyDecision(ctx context.Context, record model.DecisionRecord) error {
	attrs := []any{
		"case_id", record.CaseID,
		"application_id", record.ApplicationID,
		"subject_type", record.SubjectType,
		"decision", record.Decision,
		"timestamp", record.Timestamp,
	}
	if record.RejectionReason != "" {
		attrs = append(attrs, "rejection_reason", record.RejectionReason)
	}
	if record.ScoreBreakdown != nil {
		attrs = append(attrs, "bureau_score", record.ScoreBreakdown.BureauScore)
	}
	n.logger.InfoContext(ctx, "verification decision", attrs...)
	return nil
}
