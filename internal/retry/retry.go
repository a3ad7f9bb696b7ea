// Package retry runs an operation a bounded number of times with exponential
// backoff between failed attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// ErrExhausted is returned by [Do] when every attempt failed. It wraps the
// last error returned by the operation.
var ErrExhausted = errors.New("retry: all attempts exhausted")

// Policy describes how many times an operation is attempted and how long to
// wait between attempts. Zero values are replaced by [Policy.withDefaults].
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	// Default: 3.
	MaxAttempts int

	// InitialBackoff is the wait after the first failed attempt.
	// Default: 2s.
	InitialBackoff time.Duration

	// BackoffFactor multiplies the wait after every further failure:
	// wait(n) = InitialBackoff * BackoffFactor^(n-1). Default: 2.
	BackoffFactor float64

	// MaxBackoff caps a single wait. Default: 30s.
	MaxBackoff time.Duration

	// JitterFraction adds up to JitterFraction*wait of random noise.
	// Default: 0 (deterministic waits).
	JitterFraction float64
}

// DefaultPolicy returns three attempts with 2s and 4s waits in between.
func DefaultPolicy() Policy {
	return Policy{}.withDefaults()
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = 2 * time.Second
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = 2
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 30 * time.Second
	}
	if p.JitterFraction < 0 {
		p.JitterFraction = 0
	}
	return p
}

// Backoff returns the wait that follows failed attempt number attempt
// (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.withDefaults()
	if attempt < 1 {
		attempt = 1
	}

	base := float64(p.InitialBackoff) * math.Pow(p.BackoffFactor, float64(attempt-1))
	if base > float64(p.MaxBackoff) {
		base = float64(p.MaxBackoff)
	}
	if p.JitterFraction > 0 {
		base += base * p.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter
	}
	return time.Duration(base)
}

// SleepFunc waits for d or until ctx is done, whichever happens first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default [SleepFunc] backed by a timer.
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

type options struct {
	sleep     SleepFunc
	retryable func(error) bool
	onRetry   func(attempt int, err error, wait time.Duration)
}

// Option customizes a single [Do] call.
type Option func(*options)

// WithSleep replaces the timer-based wait, mainly so tests can record waits
// without sleeping.
func WithSleep(sleep SleepFunc) Option {
	return func(o *options) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// WithRetryable restricts retries to errors for which fn returns true.
// Other errors are returned immediately. By default every error is retried.
func WithRetryable(fn func(error) bool) Option {
	return func(o *options) {
		o.retryable = fn
	}
}

// WithOnRetry registers a callback invoked after a failed attempt, before
// waiting for the next one.
func WithOnRetry(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(o *options) {
		o.onRetry = fn
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, the context
// is done, or policy.MaxAttempts attempts have failed. attempt passed to fn
// is 1-based. On exhaustion the returned error wraps both [ErrExhausted] and
// the last error from fn.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context, attempt int) error, opts ...Option) error {
	policy = policy.withDefaults()
	o := options{sleep: Sleep}
	for _, opt := range opts {
		opt(&o)
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if o.retryable != nil && !o.retryable(lastErr) {
			return lastErr
		}
		if attempt == policy.MaxAttempts {
			break
		}

		wait := policy.Backoff(attempt)
		if o.onRetry != nil {
			o.onRetry(attempt, lastErr, wait)
		}
		if err := o.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, policy.MaxAttempts, lastErr)
}
