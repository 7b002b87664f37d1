package ingest

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks IdempotencyStore,Publisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"salesintel/internal/ingest/metrics"
	"salesintel/internal/ingest/mocks"
	"salesintel/internal/intelligence"
	dErrors "salesintel/pkg/domain-errors"
)

func sampleEnvelope() *intelligence.EventEnvelope {
	return &intelligence.EventEnvelope{
		EventID:       "evt_1",
		EventType:     "deal.updated",
		OccurredAt:    time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
		Source:        "hubspot",
		WorkspaceSlug: "acme",
		Entity:        intelligence.EventEntity{Type: "deal", ID: "d1"},
		Payload:       intelligence.Payload{"notes": "pricing"},
		Metadata:      intelligence.EventMetadata{CorrelationID: "corr", IdempotencyKey: "idem"},
	}
}

type fixture struct {
	store     *mocks.MockIdempotencyStore
	publisher *mocks.MockPublisher
	metrics   *metrics.Metrics
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		store:     mocks.NewMockIdempotencyStore(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		metrics:   metrics.New(prometheus.NewRegistry()),
	}
	f.svc = New(f.store, f.publisher,
		WithTTL(time.Hour),
		WithMetrics(f.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return f
}

func (f *fixture) outcome(name string) float64 {
	return testutil.ToFloat64(f.metrics.IngestOutcomes.WithLabelValues(name))
}

func TestAcceptPublishesClaimedEvent(t *testing.T) {
	f := newFixture(t)
	env := sampleEnvelope()

	gomock.InOrder(
		f.store.EXPECT().Claim(gomock.Any(), "acme:idem", time.Hour).Return(true, nil),
		f.publisher.EXPECT().Publish(gomock.Any(), env).Return(nil),
	)

	require.NoError(t, f.svc.Accept(context.Background(), env))
	assert.Equal(t, 1.0, f.outcome(metrics.OutcomeAccepted))
}

func TestAcceptRejectsReplay(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().Claim(gomock.Any(), "acme:idem", time.Hour).Return(false, nil)

	err := f.svc.Accept(context.Background(), sampleEnvelope())

	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, 1.0, f.outcome(metrics.OutcomeDuplicate))
}

func TestAcceptReleasesKeyWhenPublishFails(t *testing.T) {
	f := newFixture(t)
	env := sampleEnvelope()

	gomock.InOrder(
		f.store.EXPECT().Claim(gomock.Any(), "acme:idem", time.Hour).Return(true, nil),
		f.publisher.EXPECT().Publish(gomock.Any(), env).Return(errors.New("broker down")),
		f.store.EXPECT().Release(gomock.Any(), "acme:idem").Return(nil),
	)

	err := f.svc.Accept(context.Background(), env)

	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, 1.0, f.outcome(metrics.OutcomeUnavailable))
}

func TestAcceptStillFailsWhenReleaseFails(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
	f.store.EXPECT().Release(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	err := f.svc.Accept(context.Background(), sampleEnvelope())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestAcceptStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))

	err := f.svc.Accept(context.Background(), sampleEnvelope())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestAcceptRequiresRoutingFields(t *testing.T) {
	f := newFixture(t)
	env := sampleEnvelope()
	env.EventType = " "
	env.WorkspaceSlug = ""

	err := f.svc.Accept(context.Background(), env)

	var ve *intelligence.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("eventType"))
	assert.True(t, ve.Has("workspaceSlug"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, 1.0, f.outcome(metrics.OutcomeRejected))
}

func TestAcceptReleasesKeyAfterRequestCancelled(t *testing.T) {
	f := newFixture(t)
	env := sampleEnvelope()
	ctx, cancel := context.WithCancel(context.Background())

	f.store.EXPECT().Claim(gomock.Any(), "acme:idem", time.Hour).Return(true, nil)
	f.publisher.EXPECT().Publish(gomock.Any(), env).DoAndReturn(
		func(ctx context.Context, _ *intelligence.EventEnvelope) error {
			cancel()
			return ctx.Err()
		})
	f.store.EXPECT().Release(gomock.Any(), "acme:idem").DoAndReturn(
		func(ctx context.Context, _ string) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline, "release should be bounded")
			assert.NoError(t, ctx.Err(), "release needs a live context")
			return ctx.Err()
		})

	err := f.svc.Accept(ctx, env)

	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.Equal(t, 1.0, f.outcome(metrics.OutcomeUnavailable))
}
