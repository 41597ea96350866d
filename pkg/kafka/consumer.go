package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/metrics"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/segmentio/kafka-go"
)

const fetchRetryDelay = time.Second

// MessageHandler receives each decoded change event.
type MessageHandler func(ctx context.Context, event models.ChangeEvent, headers MessageHeaders) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads the changes topic and commits every message after handing it off, whether
// or not it could be handled.
type Consumer struct {
	reader     messageReader
	logger     ectologger.Logger
	topic      string
	group      string
	retryDelay time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer(config Config, logger ectologger.Logger) (*Consumer, error) {
	err := config.validate()
	if config.GroupID == "" {
		err = errors.Join(err, errors.New("group id is required"))
	}
	if err != nil {
		return nil, fmt.Errorf("invalid consumer config: %w", err)
	}

	return newConsumer(kafka.NewReader(config.readerConfig()), config, logger), nil
}

func newConsumer(reader messageReader, config Config, logger ectologger.Logger) *Consumer {
	return &Consumer{
		reader:     reader,
		logger:     logger,
		topic:      config.Topic,
		group:      config.GroupID,
		retryDelay: fetchRetryDelay,
	}
}

// Start consumes in the background until Stop or ctx is done.
func (c *Consumer) Start(ctx context.Context, handler MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		return errors.New("consumer is already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx, handler, c.done)

	c.logger.WithFields(map[string]any{"topic": c.topic, "group": c.group}).Info("Kafka consumer started")
	return nil
}

// Stop waits for the in-flight message and closes the reader. It is a no-op when the
// consumer is not running.
func (c *Consumer) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if done == nil {
		return nil
	}

	cancel()
	<-done

	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("failed to close reader: %w", err)
	}

	c.logger.Info("Kafka consumer stopped")
	return nil
}

func (c *Consumer) run(ctx context.Context, handler MessageHandler, done chan struct{}) {
	defer close(done)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.WithError(err).WithField("topic", c.topic).Error("Failed to fetch change event")
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
			continue
		}

		outcome := c.deliver(ctx, msg, handler)
		metrics.KafkaMessagesConsumed.WithLabelValues(c.topic, outcome).Inc()

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.WithError(err).WithField("offset", msg.Offset).Error("Failed to commit change event")
		}
	}
}

// deliver decodes msg and calls handler, returning the metric outcome.
func (c *Consumer) deliver(ctx context.Context, msg kafka.Message, handler MessageHandler) string {
	log := c.logger.WithFields(map[string]any{
		"topic":     c.topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	event, err := ParseChangeEvent(msg.Value)
	if err != nil {
		log.WithError(err).Error("Dropping undecodable change event")
		return "invalid"
	}

	headers := make([]Header, 0, len(msg.Headers))
	for _, h := range msg.Headers {
		headers = append(headers, Header{Key: h.Key, Value: h.Value})
	}
	meta := ExtractHeaders(headers)

	if err := handler(ctx, event, meta); err != nil {
		log.WithError(err).WithFields(map[string]any{
			"event_id": event.ID,
			"trace_id": meta.TraceID(),
		}).Error("Change event handler failed")
		return "error"
	}

	return "success"
}
