package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type sqsQueue struct {
	client   *sqs.Client
	queueURL string
	logger   *slog.Logger
}

// NewSQS resolves cfg.QueueName to a queue URL and returns a queue bound
// to it. Dev mode uses static credentials against cfg.Endpoint.
func NewSQS(ctx context.Context, cfg *Config, logger *slog.Logger) (Queue, error) {
	client, err := newSQSClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create sqs client: %w", err)
	}

	out, err := client.ListQueues(ctx, &sqs.ListQueuesInput{
		QueueNamePrefix: aws.String(cfg.QueueName),
	})
	if err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}

	for _, url := range out.QueueUrls {
		if strings.HasSuffix(url, "/"+cfg.QueueName) {
			return &sqsQueue{
				client:   client,
				queueURL: url,
				logger:   logger.With("system", "queue", "provider", "sqs"),
			}, nil
		}
	}

	return nil, fmt.Errorf("queue %q not found", cfg.QueueName)
}

func newSQSClient(ctx context.Context, cfg *Config) (*sqs.Client, error) {
	if cfg.DevMode {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("dummy", "dummy", ""),
			),
		)
		if err != nil {
			return nil, err
		}

		return sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}
	return sqs.NewFromConfig(awsCfg), nil
}

func (q *sqsQueue) Send(ctx context.Context, body string) error {
	_, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(body),
	})
	return err
}

func (q *sqsQueue) Receive(ctx context.Context, visibilityTimeout int32) (*Message, error) {
	resp, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   visibilityTimeout,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Messages) == 0 {
		return nil, nil
	}

	msg := resp.Messages[0]
	return &Message{
		ID:   aws.ToString(msg.ReceiptHandle),
		Body: aws.ToString(msg.Body),
	}, nil
}

func (q *sqsQueue) Delete(ctx context.Context, msg *Message) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(msg.ID),
	})
	return err
}
