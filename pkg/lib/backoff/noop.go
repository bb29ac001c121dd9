package backoff

import "context"

// Noop never pauses, regardless of the number of attempts. Useful in tests.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (b *Noop) Backoff(ctx context.Context, attempts int) {}

// compile time check whether the Noop implements the Backoff interface.
var _ Backoff = (*Noop)(nil)
