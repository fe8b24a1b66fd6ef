package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff_DelayDoubles(t *testing.T) {
	b := Backoff{
		Initial:    1 * time.Second,
		Max:        30 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, 1*time.Second, b.Delay(0))
	assert.Equal(t, 2*time.Second, b.Delay(1))
	assert.Equal(t, 4*time.Second, b.Delay(2))
	assert.Equal(t, 8*time.Second, b.Delay(3))
}

func TestBackoff_DelayIsMonotonic(t *testing.T) {
	b := DefaultBackoff()

	prev := time.Duration(0)
	for attempt := 0; attempt < 10; attempt++ {
		d := b.Delay(attempt)
		assert.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
		prev = d
	}
}

func TestBackoff_DelayCappedAtMax(t *testing.T) {
	b := Backoff{
		Initial:    1 * time.Second,
		Max:        5 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, 4*time.Second, b.Delay(2))
	assert.Equal(t, 5*time.Second, b.Delay(3))
	assert.Equal(t, 5*time.Second, b.Delay(10))
	assert.Equal(t, 5*time.Second, b.Delay(60))
}

func TestBackoff_NegativeAttemptTreatedAsFirst(t *testing.T) {
	b := DefaultBackoff()

	assert.Equal(t, b.Delay(0), b.Delay(-1))
}

func TestBackoff_ZeroValueFallsBackToDefaults(t *testing.T) {
	var b Backoff

	assert.Equal(t, 1*time.Second, b.Delay(0))
	assert.Equal(t, 2*time.Second, b.Delay(1))
}

func TestSleep_ReturnsAfterDuration(t *testing.T) {
	start := time.Now()
	err := Sleep(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSleep_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, 10*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkBackoff_Delay(b *testing.B) {
	backoff := DefaultBackoff()
	for i := 0; i < b.N; i++ {
		backoff.Delay(i % 8)
	}
}
