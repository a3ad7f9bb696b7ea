// Package middleware provides the built-in [client.Middleware]
// implementations wrapped around model calls.
//
//   - [NewTimeoutMiddleware] bounds each call with context.WithTimeout.
//   - [NewRetryMiddleware] retries transient failures with exponential backoff.
//   - [NewCircuitBreakerMiddleware] fails fast after consecutive failures.
//   - [NewLoggingMiddleware] emits structured slog entries per call.
//
// # Usage
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 2}),
//	        middleware.NewTimeoutMiddleware(2*time.Minute),
//	        middleware.NewCircuitBreakerMiddleware(middleware.CircuitBreakerConfig{}, logger),
//	        middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard),
//	    ),
//	)
//
// Middlewares execute outermost-first, so a request travels
//
//	Retry → Timeout → CircuitBreaker → Logging → Provider
//
// and the response travels back in reverse. With this order every attempt
// gets its own deadline and an open circuit stops retries immediately.
package middleware
