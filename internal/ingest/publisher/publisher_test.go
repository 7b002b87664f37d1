package publisher

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"salesintel/internal/intelligence"
	"salesintel/pkg/platform/sentinel"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func sampleEnvelope() *intelligence.EventEnvelope {
	return &intelligence.EventEnvelope{
		EventID:       "evt_1",
		EventType:     "deal.updated",
		OccurredAt:    time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
		Source:        "hubspot",
		WorkspaceSlug: "acme",
		Entity:        intelligence.EventEntity{Type: "deal", ID: "d1"},
		Payload:       intelligence.Payload{"stage": "negotiation"},
		Metadata:      intelligence.EventMetadata{CorrelationID: "corr", IdempotencyKey: "idem"},
	}
}

func TestKafkaPublisherProducesKeyedRecord(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewKafka(producer, "sales-events")

	require.NoError(t, pub.Publish(context.Background(), sampleEnvelope()))
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "sales-events", rec.Topic)
	assert.Equal(t, []byte("acme"), rec.Key)

	headers := map[string]string{}
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "corr", headers[HeaderCorrelationID])
	assert.Equal(t, "idem", headers[HeaderIdempotencyKey])
	assert.Equal(t, "deal.updated", headers[HeaderEventType])

	// The record value must round-trip through the envelope validator.
	env, err := intelligence.ParseEnvelope(rec.Value)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", env.EventID)
	assert.Equal(t, "negotiation", env.Payload["stage"])
}

func TestKafkaPublisherWrapsProduceError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("leader not available")}
	pub := NewKafka(producer, "sales-events")

	err := pub.Publish(context.Background(), sampleEnvelope())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestLogPublisherNeverFails(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLog(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, pub.Publish(context.Background(), sampleEnvelope()))
	assert.Contains(t, buf.String(), `"event_id":"evt_1"`)
	assert.Contains(t, buf.String(), `"workspace":"acme"`)
}
