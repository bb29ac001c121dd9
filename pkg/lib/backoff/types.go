package backoff

import "context"

// Backoff is a strategy for pausing between retries of a failing operation.
type Backoff interface {
	// Backoff blocks for the duration appropriate to the given attempt count,
	// or until the context is done. attempts is the number of failures so
	// far; zero means no failure and no pause.
	Backoff(ctx context.Context, attempts int)
}
