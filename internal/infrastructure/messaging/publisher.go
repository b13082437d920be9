package messaging

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/config"
)

// Message header names
const (
	HeaderEventID       = "event_id"
	HeaderEventType     = "event_type"
	HeaderCorrelationID = "correlation_id"
	HeaderTenantID      = "tenant_id"
)

// MessageWriter is the part of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a writer that routes by message key, so all events of
// one aggregate land on the same partition in publication order
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// KafkaPublisher implements shared.EventPublisher on a Kafka topic
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher writing to topic
func NewKafkaPublisher(writer MessageWriter, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

// Publish writes events as one batch, keyed by aggregate id
func (p *KafkaPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := p.message(ctx, e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	p.logger.Debug("Events published",
		zap.String("topic", p.topic),
		zap.Int("count", len(msgs)),
	)
	return nil
}

func (p *KafkaPublisher) message(ctx context.Context, e shared.DomainEvent) (kafka.Message, error) {
	env, err := shared.NewEnvelope(e)
	if err != nil {
		return kafka.Message{}, err
	}
	value, err := env.Marshal()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s: %w", env.EventType, err)
	}

	headers := []kafka.Header{
		{Key: HeaderEventID, Value: []byte(env.EventID)},
		{Key: HeaderEventType, Value: []byte(env.EventType)},
	}
	if env.Metadata.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: HeaderCorrelationID, Value: []byte(env.Metadata.CorrelationID)})
	}
	if env.TenantID != "" {
		headers = append(headers, kafka.Header{Key: HeaderTenantID, Value: []byte(env.TenantID)})
	}
	injectTrace(ctx, &headers)

	return kafka.Message{
		Topic:   p.topic,
		Key:     []byte(env.AggregateID),
		Value:   value,
		Headers: headers,
	}, nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	return nil
}

var _ shared.EventPublisher = (*KafkaPublisher)(nil)
