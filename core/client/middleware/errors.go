package middleware

import "errors"

// ErrRetryExhausted is returned by the retry middleware when every attempt
// failed. It is wrapped together with the last provider error, so both can
// be matched with errors.Is.
var ErrRetryExhausted = errors.New("searchagent: all retry attempts exhausted")

// ErrCircuitOpen is returned by the circuit breaker middleware while it
// rejects calls without reaching the provider.
var ErrCircuitOpen = errors.New("searchagent: model circuit open")
