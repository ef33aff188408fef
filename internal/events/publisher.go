package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/solosphere-be/shared/rabbitmq"
)

// Publisher hands events to the activity pipeline
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event; used when RabbitMQ is disabled
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

type messagePublisher interface {
	PublishWithRetry(ctx context.Context, msg rabbitmq.Message) error
}

// AMQPPublisher publishes events as JSON through the RabbitMQ client
type AMQPPublisher struct {
	client messagePublisher
	logger *slog.Logger
}

func NewAMQPPublisher(client messagePublisher, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		client: client,
		logger: logger,
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = p.client.PublishWithRetry(ctx, rabbitmq.Message{
		ID:          e.EventID,
		Type:        string(e.Type),
		ContentType: ContentType,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", e.Type, err)
	}

	p.logger.Debug("Event published",
		slog.String("event_id", e.EventID),
		slog.String("type", string(e.Type)),
	)
	return nil
}
