// Package retry provides a small generic combinator for bounded retries with
// exponential backoff. It exists so the housekeeping calls (conversation title
// and summary generation) share exactly the same retry semantics instead of
// duplicating an inline counter loop at each call site.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/darko-mesaros/bedrust/logging"
)

// DefaultMaxAttempts bounds how often an operation is tried before giving up.
const DefaultMaxAttempts = 3

// Exhausted is the terminal error returned once every attempt has failed.
// It carries the attempt count and wraps the last underlying error.
type Exhausted struct {
	Attempts int
	Last     error
}

// Error implements the error interface.
func (e *Exhausted) Error() string {
	return fmt.Sprintf("failed to get a response after %d retries: %v", e.Attempts, e.Last)
}

// Unwrap exposes the last attempt's error for errors.Is / errors.As.
func (e *Exhausted) Unwrap() error { return e.Last }

// BackoffFunc maps a zero-based attempt counter to the delay slept after that
// attempt fails.
type BackoffFunc func(attempt int) time.Duration

// Exponential doubles the delay per failed attempt: 1s, 2s, 4s, ...
func Exponential(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// Policy bundles the retry knobs. The zero value is usable: it applies
// DefaultMaxAttempts, Exponential backoff, a context-aware sleep and a no-op
// logger.
type Policy struct {
	MaxAttempts int
	Backoff     BackoffFunc
	// Sleep overrides the wait between attempts, mainly for tests. When nil
	// the policy waits on a timer while honoring context cancellation.
	Sleep  func(d time.Duration)
	Logger logging.Logger
}

// Do runs op until it succeeds or the policy's attempts are exhausted. After
// each failed attempt except the last, it sleeps for the backoff duration.
// Context cancellation aborts the wait and surfaces ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = Exponential
	}
	logger := logging.OrNoOp(p.Logger)

	var last error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		last = err
		logger.Warn("operation failed", "attempt", attempt+1, "max_attempts", maxAttempts, "error", err)

		if attempt+1 >= maxAttempts {
			break
		}
		if err := wait(ctx, p.Sleep, backoff(attempt)); err != nil {
			return zero, err
		}
	}
	return zero, &Exhausted{Attempts: maxAttempts, Last: last}
}

func wait(ctx context.Context, sleep func(time.Duration), d time.Duration) error {
	if sleep != nil {
		sleep(d)
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
