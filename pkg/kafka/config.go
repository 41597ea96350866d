package kafka

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Config describes the change event topic. The producer and the consumer read the same
// topic; GroupID only matters to the consumer.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string

	BatchSize    int
	BatchTimeout time.Duration
	// RequiredAcks: 0 none, 1 leader, -1 all in-sync replicas.
	RequiredAcks int
	MaxAttempts  int
	WriteTimeout time.Duration
	// Compression is one of none, gzip, snappy, lz4, zstd.
	Compression string

	MaxWait        time.Duration
	CommitInterval time.Duration
	// FromOldest replays the retained topic for a new group instead of tailing it.
	FromOldest bool
}

func DefaultConfig() Config {
	return Config{
		Brokers:        []string{"localhost:9092"},
		Topic:          "kitchin.changes",
		BatchSize:      1,
		BatchTimeout:   10 * time.Millisecond,
		RequiredAcks:   1,
		MaxAttempts:    3,
		WriteTimeout:   10 * time.Second,
		Compression:    "snappy",
		MaxWait:        time.Second,
		CommitInterval: time.Second,
	}
}

func (c Config) validate() error {
	var errs []error
	if len(c.Brokers) == 0 {
		errs = append(errs, errors.New("at least one broker is required"))
	}
	if strings.TrimSpace(c.Topic) == "" {
		errs = append(errs, errors.New("topic is required"))
	}
	if _, err := parseCompression(c.Compression); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c Config) writer() *kafka.Writer {
	compression, _ := parseCompression(c.Compression)
	return &kafka.Writer{
		Addr: kafka.TCP(c.Brokers...),
		// one entity always hashes to one partition, keeping its events ordered
		Balancer:               &kafka.Hash{},
		BatchSize:              c.BatchSize,
		BatchTimeout:           c.BatchTimeout,
		MaxAttempts:            c.MaxAttempts,
		WriteTimeout:           c.WriteTimeout,
		Compression:            compression,
		RequiredAcks:           kafka.RequiredAcks(c.RequiredAcks),
		AllowAutoTopicCreation: true,
	}
}

func (c Config) readerConfig() kafka.ReaderConfig {
	start := kafka.LastOffset
	if c.FromOldest {
		start = kafka.FirstOffset
	}
	return kafka.ReaderConfig{
		Brokers:        c.Brokers,
		Topic:          c.Topic,
		GroupID:        c.GroupID,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		MaxWait:        c.MaxWait,
		CommitInterval: c.CommitInterval,
		StartOffset:    start,
	}
}

func parseCompression(name string) (kafka.Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	}
	return 0, fmt.Errorf("unknown compression %q", name)
}
