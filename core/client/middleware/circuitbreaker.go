package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/leofalp/searchagent/core/client"
	"github.com/leofalp/searchagent/providers/ai"
)

const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// CircuitBreakerConfig configures the circuit breaker middleware.
type CircuitBreakerConfig struct {
	// Name identifies the breaker in logs. Default: "llm".
	Name string
	// MaxFailures is the number of consecutive failures before the circuit
	// opens. Default: 5.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before a half-open trial call.
	// Default: 30s.
	Timeout time.Duration
	// Interval is the cyclic period of the closed state for clearing
	// failure counts. Default: 60s.
	Interval time.Duration
}

// NewCircuitBreakerMiddleware routes model calls through a gobreaker
// circuit breaker. While the circuit is open, calls fail immediately with an
// error wrapping ErrCircuitOpen. Cancellation by the caller is not counted
// as a failure.
func NewCircuitBreakerMiddleware(config CircuitBreakerConfig, logger *slog.Logger) client.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Name == "" {
		config.Name = "llm"
	}
	if config.MaxFailures == 0 {
		config.MaxFailures = defaultCBMaxFailures
	}
	if config.Timeout == 0 {
		config.Timeout = defaultCBTimeout
	}
	if config.Interval == 0 {
		config.Interval = defaultCBInterval
	}

	breaker := gobreaker.NewCircuitBreaker[*ai.ChatResponse](gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: 1, // single trial call in half-open state
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			response, err := breaker.Execute(func() (*ai.ChatResponse, error) {
				return next(ctx, request)
			})
			if err != nil {
				if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
					return nil, fmt.Errorf("%w: %s: %w", ErrCircuitOpen, config.Name, err)
				}
				return nil, err
			}
			return response, nil
		}
	}
}
