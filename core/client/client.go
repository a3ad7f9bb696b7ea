package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/searchagent/providers/ai"
)

// ErrNilProvider is returned by New when no provider is given.
var ErrNilProvider = errors.New("client: provider is nil")

// Client sends chat requests through a middleware chain, filling in the
// configured model and generation parameters when a request leaves them
// unset. A Client is immutable after construction and safe for concurrent
// use.
type Client struct {
	send             SendFunc
	model            string
	generationConfig *ai.GenerationConfig
}

type options struct {
	model            string
	generationConfig *ai.GenerationConfig
	middlewares      []Middleware
}

// Option configures a Client.
type Option func(*options)

// WithModel sets the model used when a request does not name one.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithGenerationConfig sets the sampling parameters used when a request does
// not carry its own.
func WithGenerationConfig(config ai.GenerationConfig) Option {
	return func(o *options) {
		o.generationConfig = &config
	}
}

// WithMiddleware appends middlewares to the chain. The first middleware
// passed overall is the outermost.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

// New returns a Client around provider.
func New(provider ai.Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	for i, mw := range o.middlewares {
		if mw == nil {
			return nil, fmt.Errorf("client: middleware %d is nil", i)
		}
	}

	return &Client{
		send:             buildSendChain(provider, o.middlewares),
		model:            o.model,
		generationConfig: o.generationConfig,
	}, nil
}

// Send applies the client defaults to request and runs it through the chain.
// Its signature matches SendFunc, so c.Send can be handed to the loop.
func (c *Client) Send(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if request.Model == "" {
		request.Model = c.model
	}
	if request.GenerationConfig == nil && c.generationConfig != nil {
		config := *c.generationConfig
		request.GenerationConfig = &config
	}
	return c.send(ctx, request)
}
