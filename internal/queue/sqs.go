// Package queue hands notification jobs to the delivery worker. Two backends
// exist: an SQS publisher and a database outbox. Both return an identifier
// for the enqueued job.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/domain"
)

// SQSAPI is the subset of the SQS client used here.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// LoadAWSConfig resolves credentials through the default chain for region.
func LoadAWSConfig(ctx context.Context, region string) (sdkaws.Config, error) {
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return cfg, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// Publisher sends notification payloads to an SQS queue.
type Publisher struct {
	SQS      SQSAPI
	QueueURL string
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(client SQSAPI, queueURL string) *Publisher {
	return &Publisher{SQS: client, QueueURL: queueURL}
}

// NewSQSPublisher loads the AWS config and builds a Publisher on a real client.
func NewSQSPublisher(ctx context.Context, region, queueURL string) (*Publisher, error) {
	cfg, err := LoadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return NewPublisher(sqs.NewFromConfig(cfg), queueURL), nil
}

// Enqueue sends payload as a JSON message body. Sender and recipient travel
// as message attributes so consumers can filter without decoding the body.
func (p *Publisher) Enqueue(ctx context.Context, payload domain.NotificationPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	input := &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(p.QueueURL),
		MessageBody: sdkaws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"sender_username":    stringAttr(payload.SenderUsername),
			"recipient_username": stringAttr(payload.RecipientUsername),
			"kind":               stringAttr("pledge_notification"),
		},
	}

	out, err := p.SQS.SendMessage(ctx, input)
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return sdkaws.ToString(out.MessageId), nil
}

func stringAttr(v string) sqstypes.MessageAttributeValue {
	return sqstypes.MessageAttributeValue{
		DataType:    sdkaws.String("String"),
		StringValue: sdkaws.String(v),
	}
}
