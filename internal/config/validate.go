package config

import (
	"fmt"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a
// *ValidationError listing every problem found.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateAgent(cfg, ve)
	validateLLM(cfg, ve)
	validateSearch(cfg, ve)
	validateObservability(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateAgent(cfg *Config, ve *ValidationError) {
	if cfg.Agent.MaxTurns < 0 {
		ve.Add("agent.max_turns must be >= 0")
	}
	if len(cfg.Agent.Tools) == 0 {
		ve.Add("agent.tools must list at least one tool")
	}
	seen := make(map[string]bool, len(cfg.Agent.Tools))
	for _, name := range cfg.Agent.Tools {
		switch name {
		case ToolSearchBrave, ToolGetURLContent:
		default:
			ve.Add("agent.tools: unknown tool %q", name)
		}
		if seen[name] {
			ve.Add("agent.tools: duplicate tool %q", name)
		}
		seen[name] = true
	}
}

func validateLLM(cfg *Config, ve *ValidationError) {
	switch cfg.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		ve.Add("llm.provider: unknown provider %q (want %q or %q)", cfg.LLM.Provider, ProviderOpenAI, ProviderAnthropic)
	}
	if cfg.LLM.MaxTokens <= 0 {
		ve.Add("llm.max_tokens must be > 0")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		ve.Add("llm.temperature must be within [0, 2]")
	}
	if cfg.LLM.Timeout < 0 {
		ve.Add("llm.timeout must be >= 0")
	}
	if cfg.LLM.MaxRetries < 0 {
		ve.Add("llm.max_retries must be >= 0")
	}
	if p := cfg.LLM.Pricing; p != nil {
		if p.InputCostPerMillion < 0 || p.OutputCostPerMillion < 0 || p.CachedInputCostPerMillion < 0 {
			ve.Add("llm.pricing: prices must be >= 0")
		}
	}
}

func validateSearch(cfg *Config, ve *ValidationError) {
	if cfg.Search.BaseURL == "" {
		ve.Add("search.base_url is required")
	}
	if cfg.Search.Count < 0 {
		ve.Add("search.count must be >= 0")
	}
}

func validateObservability(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Format) {
	case "compact", "json":
	default:
		ve.Add("logger.format: unknown format %q", cfg.Logger.Format)
	}
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		ve.Add("tracer.exporter: unsupported exporter %q", cfg.Tracer.Exporter)
	}
}
