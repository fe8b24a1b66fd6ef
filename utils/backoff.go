package utils

import (
	"context"
	"time"
)

// Backoff computes the wait before retry attempt n. Delays grow by
// Multiplier from Initial and are capped at Max, so a misbehaving
// upstream can never stall a run indefinitely.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

func DefaultBackoff() Backoff {
	return Backoff{
		Initial:    1 * time.Second,
		Max:        30 * time.Second,
		Multiplier: 2.0,
	}
}

// Delay returns the wait for the given zero-based attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	initial := b.Initial
	if initial <= 0 {
		initial = time.Second
	}
	multiplier := b.Multiplier
	if multiplier < 1 {
		multiplier = 2.0
	}

	delay := float64(initial)
	for i := 0; i < attempt; i++ {
		delay *= multiplier
		if b.Max > 0 && delay >= float64(b.Max) {
			return b.Max
		}
	}

	d := time.Duration(delay)
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// SleepFunc is the wait primitive used between retries. Tests swap it
// out to observe delays without slowing the suite down.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
