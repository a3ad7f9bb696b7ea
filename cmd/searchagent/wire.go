package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/leofalp/searchagent/core/client"
	"github.com/leofalp/searchagent/core/client/middleware"
	"github.com/leofalp/searchagent/core/cost"
	"github.com/leofalp/searchagent/internal/config"
	"github.com/leofalp/searchagent/patterns/react"
	"github.com/leofalp/searchagent/providers/ai"
	"github.com/leofalp/searchagent/providers/ai/anthropic"
	"github.com/leofalp/searchagent/providers/ai/openai"
	"github.com/leofalp/searchagent/providers/tool"
	"github.com/leofalp/searchagent/providers/tool/bravesearch"
	"github.com/leofalp/searchagent/providers/tool/urlcontent"
)

// buildAgent wires the model client, the tool registry and the loop from
// cfg. Intermediate model text is echoed to echo.
func buildAgent(cfg *config.Config, logger *slog.Logger, echo io.Writer) (*react.Agent, error) {
	provider, err := newProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}

	c, err := client.New(provider,
		client.WithModel(cfg.LLM.Model),
		client.WithGenerationConfig(ai.GenerationConfig{
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: float32(cfg.LLM.Temperature),
		}),
		client.WithMiddleware(modelMiddlewares(cfg.LLM, logger)...),
	)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	registry, err := newToolRegistry(cfg, logger).Select(cfg.Agent.Tools...)
	if err != nil {
		return nil, fmt.Errorf("select tools: %w", err)
	}

	opts := []react.Option{
		react.WithMaxTurns(cfg.Agent.MaxTurns),
		react.WithEcho(echo),
		react.WithLogger(logger),
	}
	if cfg.Agent.SystemPrompt != "" {
		opts = append(opts, react.WithSystemPrompt(cfg.Agent.SystemPrompt))
	}
	if pricing, ok := modelPricing(cfg.LLM); ok {
		opts = append(opts, react.WithModelCost(pricing))
	}
	return react.New(c.Send, registry, opts...)
}

// modelPricing returns the configured pricing, falling back to the built-in
// table.
func modelPricing(cfg config.LLMConfig) (cost.ModelCost, bool) {
	if cfg.Pricing != nil {
		return *cfg.Pricing, true
	}
	return cost.Lookup(cfg.Model)
}

func newProvider(cfg config.LLMConfig) (ai.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.New(cfg.OpenAI.APIKey,
			openai.WithBaseURL(cfg.OpenAI.BaseURL),
			openai.WithModel(cfg.Model),
		)
	case config.ProviderAnthropic:
		return anthropic.New(cfg.Anthropic.APIKey,
			anthropic.WithModel(cfg.Model),
		)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// modelMiddlewares returns the chain around model calls, outermost first:
// retry, optional per-attempt timeout, optional circuit breaker, logging.
func modelMiddlewares(cfg config.LLMConfig, logger *slog.Logger) []client.Middleware {
	logLevel := middleware.LogLevelStandard
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		logLevel = middleware.LogLevelVerbose
	}

	var chain []client.Middleware
	if cfg.MaxRetries > 0 {
		chain = append(chain, middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: cfg.MaxRetries}))
	}
	if cfg.Timeout > 0 {
		chain = append(chain, middleware.NewTimeoutMiddleware(cfg.Timeout))
	}
	if cfg.CircuitBreaker {
		chain = append(chain, middleware.NewCircuitBreakerMiddleware(middleware.CircuitBreakerConfig{Name: cfg.Provider}, logger))
	}
	return append(chain, middleware.NewLoggingMiddleware(logger, logLevel))
}

// newToolRegistry registers every tool; the active set is selected by the
// caller.
func newToolRegistry(cfg *config.Config, logger *slog.Logger) *tool.Registry {
	search := bravesearch.New(cfg.Search.APIKey,
		bravesearch.WithBaseURL(cfg.Search.BaseURL),
		bravesearch.WithCount(cfg.Search.Count),
		bravesearch.WithLogger(logger),
	)

	contentOpts := []urlcontent.Option{
		urlcontent.WithEndpoint(cfg.Content.Endpoint),
		urlcontent.WithLogger(logger),
	}
	if cfg.Content.Markdown {
		contentOpts = append(contentOpts, urlcontent.WithMarkdown())
	}
	content := urlcontent.New(contentOpts...)

	return tool.NewRegistry(
		bravesearch.NewTool(search),
		urlcontent.NewTool(content),
	)
}
