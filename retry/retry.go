// Package retry executes fallible operations with bounded attempts and
// exponential backoff. Vendor-specific code stays free of retry concerns: it
// only has to classify its errors via the policy's Retryable predicate.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Policy configures the retry behavior of Do.
type Policy struct {
	MaxAttempts int           // total attempts, minimum 1
	BaseDelay   time.Duration // backoff starting point
	MaxDelay    time.Duration // cap on any single sleep (0 = no cap)
	Multiplier  float64       // exponential growth factor, defaults to 2
	Jitter      bool          // add up to 1s of random jitter per sleep
	Retryable   func(error) bool
}

// ExhaustedError is returned after MaxAttempts consecutive retryable
// failures. It wraps the last underlying error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// BackoffHinter is implemented by errors that carry a vendor-suggested wait,
// such as a Retry-After header on a rate-limit response. A positive hint
// overrides the computed backoff for that attempt.
type BackoffHinter interface {
	BackoffHint() time.Duration
}

// Do runs op until it succeeds, fails with a non-retryable error, the context
// is done, or MaxAttempts is reached. A nil Retryable predicate treats every
// error as retryable. The backoff sleep is the only blocking point and it
// aborts as soon as ctx is cancelled.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			break
		}
		if err := sleep(ctx, p.delay(attempt, err)); err != nil {
			return zero, err
		}
	}
	return zero, &ExhaustedError{Attempts: p.MaxAttempts, Err: lastErr}
}

// delay computes min(BaseDelay * Multiplier^(attempt-1), MaxDelay), letting a
// BackoffHinter on the error override the exponential term.
func (p Policy) delay(attempt int, cause error) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))

	var hinter BackoffHinter
	if errors.As(cause, &hinter) {
		if hint := hinter.BackoffHint(); hint > 0 {
			d = float64(hint)
		}
	}

	if p.Jitter {
		d += rand.Float64() * float64(time.Second)
	}
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
