package worker

import (
	"context"
	"errors"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Fetcher is the subset of *kgo.Client the Kafka source needs.
type Fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
}

// KafkaSource adapts a consumer-group client to Source.
type KafkaSource struct {
	client Fetcher
}

// NewKafkaSource wraps client.
func NewKafkaSource(client Fetcher) *KafkaSource {
	return &KafkaSource{client: client}
}

// Poll returns the next batch of records. Offsets are committed by the
// client's autocommit loop.
func (s *KafkaSource) Poll(ctx context.Context) ([]Message, error) {
	fetches := s.client.PollFetches(ctx)
	if fetches.IsClientClosed() {
		return nil, ErrSourceClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var errs []error
	fetches.EachError(func(_ string, _ int32, err error) {
		errs = append(errs, err)
	})

	var msgs []Message
	fetches.EachRecord(func(r *kgo.Record) {
		msgs = append(msgs, Message{
			Key:       r.Key,
			Value:     r.Value,
			Partition: r.Partition,
			Offset:    r.Offset,
		})
	})

	if len(msgs) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return msgs, nil
}
