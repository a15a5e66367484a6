package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cyphera/billing-reconciler/internal/reconcile"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// sqsSender is the subset of the SQS client used to publish reports.
type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSNotifier publishes the structured run report to an SQS queue.
type SQSNotifier struct {
	client   sqsSender
	queueURL string
}

// NewSQSNotifier creates an SQSNotifier.
func NewSQSNotifier(client sqsSender, queueURL string) *SQSNotifier {
	return &SQSNotifier{client: client, queueURL: queueURL}
}

// Name implements Notifier.
func (s *SQSNotifier) Name() string {
	return "sqs"
}

// Notify implements Notifier.
func (s *SQSNotifier) Notify(ctx context.Context, stats reconcile.RunStats) error {
	body, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats: %w", err)
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"RunID": {
				StringValue: aws.String(stats.RunID),
				DataType:    aws.String("String"),
			},
			"Trigger": {
				StringValue: aws.String(stats.Trigger),
				DataType:    aws.String("String"),
			},
			"Success": {
				StringValue: aws.String(strconv.FormatBool(stats.Success)),
				DataType:    aws.String("String"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}
	return nil
}
