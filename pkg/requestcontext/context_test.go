package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, ClientIP(ctx))

	before := time.Now()
	assert.False(t, Now(ctx).Before(before))
}

func TestRoundTrip(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithTime(ctx, fixed)
	ctx = WithClientIP(ctx, "10.0.0.1")

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, fixed, Now(ctx))
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
}

func TestReceivedAt(t *testing.T) {
	_, ok := ReceivedAt(context.Background())
	assert.False(t, ok)

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got, ok := ReceivedAt(WithTime(context.Background(), fixed))
	assert.True(t, ok)
	assert.Equal(t, fixed, got)
}
