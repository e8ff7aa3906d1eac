// Package backoff provides exponential backoff delay computation with jitter
// for the stream reconnect loop.
package backoff

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

var (
	// Thread-safe random source for jitter
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Policy controls delay growth between reconnect attempts. The delay for a
// given attempt is min(Base * 2^min(attempt, MaxShift), Max), with a uniform
// jitter of ±JitterFraction applied to the result.
type Policy struct {
	Base           time.Duration
	Max            time.Duration
	MaxShift       uint
	JitterFraction float64
}

// Default returns the standard reconnect policy: 1s base doubling up to a
// 30s cap, ±20% jitter.
func Default() Policy {
	return Policy{
		Base:           time.Second,
		Max:            30 * time.Second,
		MaxShift:       15,
		JitterFraction: 0.2,
	}
}

// Delay computes the jittered delay for the given attempt number.
// Negative attempts are treated as attempt 0.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	shift := uint(attempt)
	if shift > p.MaxShift {
		shift = p.MaxShift
	}

	base := p.Base << shift
	if base > p.Max || base <= 0 {
		base = p.Max
	}

	if p.JitterFraction <= 0 {
		return base
	}

	jitter := int64(float64(base) * p.JitterFraction)
	if jitter == 0 {
		return base
	}

	randMu.Lock()
	offset := randSource.Int63n(2*jitter+1) - jitter
	randMu.Unlock()

	return base + time.Duration(offset)
}

// Wait sleeps for d or until ctx is cancelled, whichever comes first.
// Returns the context error when cancelled during the wait.
func Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
