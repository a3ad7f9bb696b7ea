package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/leofalp/searchagent/internal/utils"
	"github.com/leofalp/searchagent/providers/ai"
)

// defaultMaxTokens is sent when the request carries no limit; the Messages
// API requires max_tokens on every call.
const defaultMaxTokens = 4096

// Provider implements [ai.Provider] for Anthropic's Messages API.
type Provider struct {
	client anthropic.Client
	model  string
}

var _ ai.Provider = (*Provider)(nil)

type options struct {
	baseURL    string
	httpClient *http.Client
	model      string
}

// Option configures a Provider.
type Option func(*options)

// WithBaseURL overrides the API root, mainly for proxies and tests.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithModel sets the model used when a request does not name one.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// New returns a Provider authenticated with apiKey. SDK-level retries are
// disabled; retrying is left to the client middleware chain.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ai.ErrMissingAPIKey)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	sdkOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(o.httpClient))
	}

	return &Provider{
		client: anthropic.NewClient(sdkOpts...),
		model:  o.model,
	}, nil
}

// SendMessage implements [ai.Provider].
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if request.Model == "" {
		request.Model = p.model
	}
	if request.Model == "" {
		return nil, fmt.Errorf("anthropic: no model set")
	}

	params, err := requestToAnthropic(request)
	if err != nil {
		return nil, fmt.Errorf("anthropic: build request: %w", err)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			err = &utils.StatusError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	result := anthropicToGeneric(msg)
	if result.Model == "" {
		result.Model = request.Model
	}
	return result, nil
}
