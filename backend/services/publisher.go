package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"factbook-dashboard/backend/analysis"

	kafkago "github.com/segmentio/kafka-go"
)

// Event types carried in the event-type header.
const (
	EventAnomalyOpened   = "anomaly.opened"
	EventAnomalyResolved = "anomaly.resolved"
)

// AnomalyEvent is the message body published for every alert transition.
type AnomalyEvent struct {
	Type       string           `json:"type"`
	RunID      string           `json:"runId"`
	Year       int              `json:"year"`
	Anomaly    analysis.Anomaly `json:"anomaly"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// AnomalyPublisher forwards alert transitions to downstream consumers.
type AnomalyPublisher interface {
	Publish(ctx context.Context, events ...AnomalyEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...AnomalyEvent) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}

// messageWriter is the part of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher writes anomaly events to one topic, keyed by anomaly id so
// every transition of an alert lands on the same partition.
type KafkaPublisher struct {
	mu     sync.Mutex
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		topic: topic,
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafkago.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafkago.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// NewPublisher picks Kafka when brokers are configured, otherwise a no-op.
func NewPublisher(brokers []string, topic string) AnomalyPublisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...AnomalyEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(events))
	for _, ev := range events {
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode %s: %w", ev.Anomaly.ID, err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(ev.Anomaly.ID),
			Value: value,
			Headers: []kafkago.Header{
				{Key: "event-type", Value: []byte(ev.Type)},
				{Key: "run-id", Value: []byte(ev.RunID)},
			},
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer.Close()
}
