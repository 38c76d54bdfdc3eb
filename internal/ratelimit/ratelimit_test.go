package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleRateLimiter_Wait(t *testing.T) {
	r := NewSimpleRateLimiter(20*time.Millisecond, 20*time.Millisecond)
	ctx := context.Background()

	// First wait pays nothing.
	start := time.Now()
	require.NoError(t, r.Wait(ctx))
	assert.Less(t, time.Since(start), 10*time.Millisecond)

	// Second wait pays the spacing.
	start = time.Now()
	require.NoError(t, r.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestSimpleRateLimiter_ContextCancelled(t *testing.T) {
	r := NewSimpleRateLimiter(time.Minute, time.Minute)
	require.NoError(t, r.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAdaptiveRateLimiter_BacksOffOnErrors(t *testing.T) {
	a := NewAdaptiveRateLimiter(2*time.Second, 4*time.Second)

	// Two errors are tolerated.
	a.RecordError()
	a.RecordError()
	assert.Equal(t, 2*time.Second, a.minDelay)

	// The third scales both bounds by 1.5.
	a.RecordError()
	assert.Equal(t, 3*time.Second, a.minDelay)
	assert.Equal(t, 6*time.Second, a.maxDelay)
}

func TestAdaptiveRateLimiter_BackoffCapped(t *testing.T) {
	a := NewAdaptiveRateLimiter(25*time.Second, 55*time.Second)

	for i := 0; i < 3; i++ {
		a.RecordError()
	}

	assert.Equal(t, 30*time.Second, a.minDelay)
	assert.Equal(t, 60*time.Second, a.maxDelay)
}

func TestAdaptiveRateLimiter_RecoversOnSuccess(t *testing.T) {
	a := NewAdaptiveRateLimiter(10*time.Second, 20*time.Second)

	for i := 0; i < 6; i++ {
		a.RecordSuccess()
	}

	assert.Equal(t, 9*time.Second, a.minDelay)

	// A success streak resets the error counter.
	a.RecordError()
	a.RecordSuccess()
	a.RecordError()
	a.RecordError()
	assert.Equal(t, 9*time.Second, a.minDelay)
}
