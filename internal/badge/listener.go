package badge

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/citybureau/zba-events/internal/logger"
)

// Message is a received queue message
type Message struct {
	Body          string
	ReceiptHandle string
}

// Queue receives and acknowledges notification messages
type Queue interface {
	Receive(ctx context.Context) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// SQSAPI is the part of the SQS client used by SQSQueue
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSQueue long-polls a single SQS queue
type SQSQueue struct {
	client   SQSAPI
	queueURL string
}

// NewSQSQueue creates a queue reader for queueURL
func NewSQSQueue(client SQSAPI, queueURL string) *SQSQueue {
	return &SQSQueue{client: client, queueURL: queueURL}
}

// Receive waits up to 20 seconds for up to 10 messages
func (q *SQSQueue) Receive(ctx context.Context) ([]Message, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, Message{
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return messages, nil
}

// Delete removes a handled message from the queue
func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// Listener feeds queued notifications to a Publisher
type Listener struct {
	queue      Queue
	publisher  *Publisher
	retryDelay time.Duration
}

// NewListener creates a listener
func NewListener(queue Queue, publisher *Publisher) *Listener {
	return &Listener{
		queue:      queue,
		publisher:  publisher,
		retryDelay: 5 * time.Second,
	}
}

// Run polls until ctx is cancelled.
//
// Messages are deleted once handled, including malformed notifications.
// Messages whose badge could not be written stay on the queue so they are
// redelivered.
func (l *Listener) Run(ctx context.Context) error {
	logger.Info("Badge listener started", nil)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Badge listener stopping", nil)
			return nil
		default:
		}

		messages, err := l.queue.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.Error("Error receiving notifications", nil, err)
			select {
			case <-ctx.Done():
			case <-time.After(l.retryDelay):
			}
			continue
		}

		for _, msg := range messages {
			l.handle(ctx, msg)
		}
	}
}

func (l *Listener) handle(ctx context.Context, msg Message) {
	_, err := l.publisher.Handle(ctx, []byte(msg.Body))
	switch {
	case err == nil:
	case IsPermanent(err):
		logger.IncrCounter("badge.rejected")
		logger.Error("Discarding notification", nil, err)
	default:
		logger.Error("Error publishing badge", nil, err)
		return
	}

	if err := l.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		logger.Error("Error deleting notification", logger.Fields{"receipt_handle": msg.ReceiptHandle}, err)
	}
}
