package client

import (
	"context"

	"github.com/leofalp/searchagent/providers/ai"
)

// SendFunc sends a chat request to the model and returns the completed
// response. It is the unit threaded through the middleware chain and the
// function the orchestration loop calls on every turn.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware wraps the next SendFunc in the chain. Middlewares are applied
// outermost-first: the first middleware in a slice is the first to see a
// request and the last to see its response.
type Middleware func(next SendFunc) SendFunc

// buildSendChain wraps a direct provider call with middlewares, applied in
// reverse so that middlewares[0] is outermost.
func buildSendChain(provider ai.Provider, middlewares []Middleware) SendFunc {
	var chain SendFunc = func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		return provider.SendMessage(ctx, request)
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i](chain)
	}

	return chain
}
