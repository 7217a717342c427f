// Package kafka publishes events to a Kafka topic via kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/studyhallco/studyhall/pkg/eventstream"
	"github.com/studyhallco/studyhall/pkg/logger"
)

const (
	// DefaultTopic is the topic events land on.
	DefaultTopic = "studyhall.events"
)

// Publisher writes events to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers lists bootstrap broker addresses (host:port).
	Brokers []string

	// Topic is the destination topic.
	// Defaults to DefaultTopic if empty.
	Topic string
}

// NewPublisher creates a Kafka-backed publisher. The underlying writer dials
// lazily, so construction succeeds even while the brokers are down.
func NewPublisher(c Config, log *slog.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.Nop()
	}

	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	topic := c.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	log.Info("kafka event publisher initialized",
		"brokers", c.Brokers,
		"topic", topic,
	)

	return &Publisher{
		writer: writer,
		logger: log,
	}, nil
}

// Publish delivers one event, keyed so per-learner ordering holds within a
// partition. The event type rides in a message header for consumers that
// route before decoding.
func (p *Publisher) Publish(ctx context.Context, event eventstream.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", event.EventType(), err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.Key()),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s event: %w", event.EventType(), err)
	}

	p.logger.Debug("published event",
		"type", event.EventType(),
		"key", event.Key(),
	)

	return nil
}

// Close flushes buffered messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
