// Package kafka publishes domain events to a Kafka topic as JSON
// envelopes, keyed by event name so consumers can partition by kind.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mercato/shopcore/internal/domain/outbox"
)

type envelope struct {
	Event      string      `json:"event"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, e outbox.Event) error {
	raw, err := json.Marshal(envelope{
		Event:      e.EventName(),
		OccurredAt: time.Now().UTC(),
		Payload:    e,
	})
	if err != nil {
		return fmt.Errorf("kafka publisher: encode %s: %w", e.EventName(), err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.EventName()),
		Value: raw,
	})
	if err != nil {
		p.logger.Warn("event publish failed",
			zap.String("event", e.EventName()),
			zap.Error(err))
		return fmt.Errorf("kafka publisher: write %s: %w", e.EventName(), err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
