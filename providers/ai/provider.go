package ai

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned by providers constructed without a credential.
var ErrMissingAPIKey = errors.New("missing API key")

// Provider is the model collaborator: it maps a conversation to one reply.
type Provider interface {
	// SendMessage sends the request and returns the completed response.
	// Returns an error if the call fails, the context is cancelled, or the
	// response cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)
}

// ProviderFunc adapts a function to [Provider].
type ProviderFunc func(ctx context.Context, request ChatRequest) (*ChatResponse, error)

// SendMessage calls f.
func (f ProviderFunc) SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	return f(ctx, request)
}
