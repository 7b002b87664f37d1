package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesintel/internal/ingest/metrics"
	"salesintel/internal/intelligence"
	pkgtestutil "salesintel/pkg/testutil"
)

// scriptedSource replays fixed batches, then reports closure.
type scriptedSource struct {
	mu      sync.Mutex
	batches [][]Message
	errs    []error
}

func (s *scriptedSource) Poll(ctx context.Context) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	if len(s.batches) == 0 {
		return nil, ErrSourceClosed
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, nil
}

// blockingSource never yields; it waits for cancellation.
type blockingSource struct{}

func (blockingSource) Poll(ctx context.Context) ([]Message, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func encode(t *testing.T, doc map[string]any) []byte {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestWorkerProcessesAndSkips(t *testing.T) {
	logs := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	m := metrics.New(prometheus.NewRegistry())

	source := &scriptedSource{
		batches: [][]Message{
			{
				{Value: encode(t, pkgtestutil.EnvelopeWithPayload(map[string]any{"notes": "legal asked for DPA"})), Offset: 1},
				{Value: []byte(`{"eventId":`), Offset: 2},
			},
			{
				{Value: encode(t, pkgtestutil.EnvelopeWithout("metadata.correlationId")), Offset: 3},
			},
		},
		errs: []error{errors.New("transient fetch error")},
	}

	w := New(source, intelligence.NewService(), logger, m)
	w.minBackoff = time.Millisecond
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WorkerRecords.WithLabelValues(metrics.WorkerProcessed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WorkerRecords.WithLabelValues(metrics.WorkerSkipped)))

	out := logs.String()
	assert.Contains(t, out, "poll failed")
	assert.Contains(t, out, "intelligence generated")
	assert.Contains(t, out, intelligence.AdvisorySecurityPacket)
	assert.Contains(t, out, "skipping malformed record")
}

func TestWorkerStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&syncBuffer{}, nil))
	w := New(blockingSource{}, intelligence.NewService(), logger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

// failingSource always errors and records when it was polled.
type failingSource struct {
	mu    sync.Mutex
	polls []time.Time
}

func (s *failingSource) Poll(context.Context) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls = append(s.polls, time.Now())
	return nil, errors.New("broker unreachable")
}

func (s *failingSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.polls)
}

func TestWorkerBacksOffWhilePollFails(t *testing.T) {
	source := &failingSource{}
	logger := slog.New(slog.NewTextHandler(&syncBuffer{}, nil))
	w := New(source, intelligence.NewService(), logger, nil)
	w.minBackoff = 50 * time.Millisecond
	w.maxBackoff = 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.LessOrEqual(t, source.count(), 5, "polls should be spaced by the backoff")
	assert.GreaterOrEqual(t, source.count(), 2)
}

func TestWorkerCancelInterruptsBackoff(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&syncBuffer{}, nil))
	w := New(&failingSource{}, intelligence.NewService(), logger, nil)
	w.minBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker stayed asleep after cancellation")
	}
}
