package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"salesintel/internal/intelligence"
	"salesintel/pkg/platform/sentinel"
)

// Record header names carried alongside each envelope.
const (
	HeaderCorrelationID  = "correlation-id"
	HeaderIdempotencyKey = "idempotency-key"
	HeaderEventType      = "event-type"
)

// Producer is the subset of *kgo.Client the Kafka publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher produces envelopes to a topic, keyed by workspace so one
// workspace's events stay ordered within a partition.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

// NewKafka constructs a KafkaPublisher writing to topic.
func NewKafka(producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish synchronously produces env and waits for the broker ack.
func (p *KafkaPublisher) Publish(ctx context.Context, env *intelligence.EventEnvelope) error {
	rec, err := NewRecord(p.topic, env)
	if err != nil {
		return err
	}
	if err := p.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce event %s: %w: %w", env.EventID, sentinel.ErrUnavailable, err)
	}
	return nil
}

// NewRecord encodes env as a Kafka record for topic.
func NewRecord(topic string, env *intelligence.EventEnvelope) (*kgo.Record, error) {
	value, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", env.EventID, err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(env.WorkspaceSlug),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: HeaderCorrelationID, Value: []byte(env.Metadata.CorrelationID)},
			{Key: HeaderIdempotencyKey, Value: []byte(env.Metadata.IdempotencyKey)},
			{Key: HeaderEventType, Value: []byte(env.EventType)},
		},
	}, nil
}
