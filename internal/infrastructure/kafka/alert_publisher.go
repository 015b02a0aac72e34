package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fraudshield/fraud-analyzer/pkg/events"
	pkgkafka "github.com/fraudshield/fraud-analyzer/pkg/kafka"
)

// MessageProducer is the subset of *pkgkafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Publisher implements port.EventPublisher using Kafka. Each event is wrapped
// in an events.Envelope and keyed by its aggregate ID.
type Publisher struct {
	producer MessageProducer
	logger   *slog.Logger
	topic    string
}

// NewPublisher creates a new Kafka event publisher.
func NewPublisher(producer MessageProducer, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends domain events to Kafka.
func (p *Publisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(domainEvents))
	for _, evt := range domainEvents {
		env, err := events.NewEnvelope(evt)
		if err != nil {
			return err
		}

		value, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("failed to marshal envelope for %s: %w", env.EventType, err)
		}

		p.logger.DebugContext(ctx, "publishing event",
			slog.String("event_type", env.EventType),
			slog.String("event_id", env.EventID.String()),
			slog.String("topic", p.topic),
			slog.Int("payload_size", len(value)),
		)

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(env.AggregateID),
			Value: value,
			Headers: map[string]string{
				"event_type": env.EventType,
				"event_id":   env.EventID.String(),
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}

	return nil
}
