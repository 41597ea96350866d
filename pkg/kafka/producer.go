package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/metrics"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes change events to the changes topic.
type Producer struct {
	writer messageWriter
	logger ectologger.Logger
	topic  string
}

func NewProducer(config Config, logger ectologger.Logger) (*Producer, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid producer config: %w", err)
	}

	logger.WithFields(map[string]any{
		"topic":       config.Topic,
		"compression": config.Compression,
	}).Info("Kafka producer created")

	return newProducer(config.writer(), config.Topic, logger), nil
}

func newProducer(writer messageWriter, topic string, logger ectologger.Logger) *Producer {
	return &Producer{
		writer: writer,
		logger: logger,
		topic:  topic,
	}
}

// PublishChangeEvent writes one change event keyed by its entity id.
func (p *Producer) PublishChangeEvent(ctx context.Context, event models.ChangeEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishChangeEvent")
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	headers := MessageHeaders{
		Table:       string(event.Table),
		Operation:   string(event.Operation),
		ClientID:    event.ClientID,
		TraceParent: traceParent(tracing.GetTraceID(ctx), tracing.GetSpanID(ctx)),
	}

	var kafkaHeaders []kafka.Header
	for _, h := range headers.ToKafkaHeaders() {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: h.Key, Value: h.Value})
	}

	msg := kafka.Message{
		Topic:   p.topic,
		Key:     []byte(event.EntityID),
		Value:   data,
		Headers: kafkaHeaders,
		Time:    event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.KafkaMessagesPublished.WithLabelValues(p.topic, "error").Inc()
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	metrics.KafkaMessagesPublished.WithLabelValues(p.topic, "success").Inc()
	return nil
}

// Close closes the producer
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	p.logger.Info("Kafka producer closed")
	return nil
}
