package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/leofalp/searchagent/core/client"
	"github.com/leofalp/searchagent/internal/retry"
	"github.com/leofalp/searchagent/internal/utils"
	"github.com/leofalp/searchagent/providers/ai"
)

// RetryConfig holds the tuning parameters for the retry middleware. Zero
// values are replaced with the defaults documented below.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first failure.
	// Default: 2 (three calls in total).
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps a single wait. Default: 30s.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the wait after every further failure.
	// Default: 2.0.
	BackoffFactor float64

	// JitterFraction adds up to JitterFraction*wait of random noise.
	// Default: 0.1.
	JitterFraction float64

	// RetryableFunc reports whether an error is transient. The default
	// retries HTTP 429, 500, 502, 503 and 529 responses and per-attempt
	// timeouts, but never an open circuit.
	RetryableFunc func(error) bool

	// Sleep replaces the timer-based wait between attempts.
	Sleep retry.SleepFunc
}

// retryableStatus lists the HTTP statuses worth another attempt. 529 is
// Anthropic's "overloaded".
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	529:                            true,
}

// defaultRetryableFunc matches provider errors carrying a transient HTTP
// status code, and attempts cut short by the timeout middleware.
func defaultRetryableFunc(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrCircuitOpen) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	code, ok := utils.StatusCode(err)
	return ok && retryableStatus[code]
}

func applyRetryDefaults(config *RetryConfig) {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 2
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.BackoffFactor <= 0 {
		config.BackoffFactor = 2.0
	}
	if config.JitterFraction == 0 {
		config.JitterFraction = 0.1
	}
	if config.RetryableFunc == nil {
		config.RetryableFunc = defaultRetryableFunc
	}
	if config.Sleep == nil {
		config.Sleep = retry.Sleep
	}
}

// NewRetryMiddleware retries failed model calls according to config.
// Non-retryable errors are returned immediately. On exhaustion the error
// wraps both ErrRetryExhausted and the last provider error.
func NewRetryMiddleware(config RetryConfig) client.Middleware {
	applyRetryDefaults(&config)

	policy := retry.Policy{
		MaxAttempts:    config.MaxRetries + 1,
		InitialBackoff: config.InitialBackoff,
		BackoffFactor:  config.BackoffFactor,
		MaxBackoff:     config.MaxBackoff,
		JitterFraction: config.JitterFraction,
	}

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			var response *ai.ChatResponse
			err := retry.Do(ctx, policy, func(ctx context.Context, _ int) error {
				resp, err := next(ctx, request)
				if err != nil {
					return err
				}
				response = resp
				return nil
			},
				retry.WithRetryable(config.RetryableFunc),
				retry.WithSleep(config.Sleep),
			)
			if err != nil {
				if errors.Is(err, retry.ErrExhausted) {
					return nil, errors.Join(ErrRetryExhausted, err)
				}
				return nil, err
			}
			return response, nil
		}
	}
}
