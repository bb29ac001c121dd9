package backoff

import (
	"context"
	"math"
	"time"
)

// Exponential doubles the pause on every consecutive failure, capped at a
// maximum duration.
type Exponential struct {
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

func NewExponential(baseBackoff, maxBackoff time.Duration) *Exponential {
	return &Exponential{
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
	}
}

func (b *Exponential) Backoff(ctx context.Context, attempts int) {
	select {
	case <-time.After(b.BackoffDuration(attempts)):
	case <-ctx.Done():
	}
}

// BackoffDuration returns the pause for the given attempt count without
// sleeping.
func (b *Exponential) BackoffDuration(attempts int) time.Duration {
	if attempts <= 0 {
		return 0
	}
	backoff := float64(b.baseBackoff) * math.Pow(2, float64(attempts-1))
	if backoff > float64(b.maxBackoff) {
		backoff = float64(b.maxBackoff)
	}
	return time.Duration(backoff)
}

// compile time check whether the Exponential implements the Backoff interface.
var _ Backoff = (*Exponential)(nil)
