// Package config loads the searchagent configuration: built-in defaults,
// then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/searchagent/core/cost"
)

// Tool names accepted in agent.tools.
const (
	ToolSearchBrave   = "search_brave"
	ToolGetURLContent = "get_url_content"
)

// Provider names accepted in llm.provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default model per provider.
const (
	DefaultOpenAIModel    = "gpt-4o-2024-08-06"
	DefaultAnthropicModel = "claude-sonnet-4-5"
)

// Config is the top-level configuration.
type Config struct {
	Agent   AgentConfig   `yaml:"agent"`
	LLM     LLMConfig     `yaml:"llm"`
	Search  SearchConfig  `yaml:"search"`
	Content ContentConfig `yaml:"content"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
}

// AgentConfig holds orchestration loop settings.
type AgentConfig struct {
	// SystemPrompt replaces the built-in research prompt when non-empty.
	SystemPrompt string `yaml:"system_prompt"`
	// MaxTurns bounds model calls per query; 0 means unbounded.
	MaxTurns int `yaml:"max_turns"`
	// Tools is the active tool set advertised to the model.
	Tools []string `yaml:"tools"`
}

// LLMConfig holds model provider settings.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	// Timeout bounds each model call attempt; 0 leaves calls unbounded.
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	// CircuitBreaker trips after consecutive model call failures.
	CircuitBreaker bool `yaml:"circuit_breaker"`
	// Pricing overrides the built-in price table used for cost estimates.
	Pricing *cost.ModelCost `yaml:"pricing"`

	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

// OpenAIConfig holds settings for OpenAI-compatible endpoints.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// AnthropicConfig holds settings for the Anthropic Messages API.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearchConfig holds Brave Search settings.
type SearchConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Count   int    `yaml:"count"`
}

// ContentConfig holds settings for the content extraction endpoint.
type ContentConfig struct {
	Endpoint string `yaml:"endpoint"`
	Markdown bool   `yaml:"markdown"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			MaxTurns: 20,
			Tools:    []string{ToolSearchBrave},
		},
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Temperature: 0.8,
			MaxTokens:   4096,
			MaxRetries:  2,
		},
		Search: SearchConfig{
			BaseURL: "https://api.search.brave.com/res/v1",
			Count:   10,
		},
		Content: ContentConfig{
			Endpoint: "https://fun-readable-cd6ed9e43b50.herokuapp.com/convert",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "compact",
		},
		Tracer: TracerConfig{
			Exporter: "noop",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist) and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	ApplyEnvOverrides(cfg)

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModel(cfg.LLM.Provider)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// ApplyEnvOverrides maps environment variables to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BRAVE_SEARCH_AI_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_BASE_URL"); v != "" {
		cfg.LLM.OpenAI.BaseURL = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.Anthropic.APIKey = v
	}
	if v := os.Getenv("SEARCHAGENT_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("SEARCHAGENT_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("SEARCHAGENT_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Agent.MaxTurns = n
		}
	}
	if v := os.Getenv("SEARCHAGENT_TOOLS"); v != "" {
		cfg.Agent.Tools = splitAndTrim(v, ",")
	}
	if v := os.Getenv("SEARCHAGENT_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("SEARCHAGENT_LOG_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("SEARCHAGENT_TRACER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tracer.Enabled = b
		}
	}
	if v := os.Getenv("SEARCHAGENT_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

func defaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultOpenAIModel
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
