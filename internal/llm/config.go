package llm

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ProviderAuto picks the first provider whose standard API key variable
// is set.
const ProviderAuto = "auto"

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the backend: "anthropic", "openai", "gemini",
	// "openrouter", "mock" or "auto".
	Provider string `yaml:"provider" env:"TRIVIA_LLM_PROVIDER"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key" env:"TRIVIA_ANTHROPIC_API_KEY"`
	Model  string `yaml:"model" env:"TRIVIA_ANTHROPIC_MODEL"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" env:"TRIVIA_OPENAI_API_KEY"`
	Model   string `yaml:"model" env:"TRIVIA_OPENAI_MODEL"`
	BaseURL string `yaml:"base_url" env:"TRIVIA_OPENAI_BASE_URL"` // for compatible APIs
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" env:"TRIVIA_GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"TRIVIA_GEMINI_MODEL"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key" env:"TRIVIA_OPENROUTER_API_KEY"`
	Model   string `yaml:"model" env:"TRIVIA_OPENROUTER_MODEL"`
	BaseURL string `yaml:"base_url" env:"TRIVIA_OPENROUTER_BASE_URL"`

	// AppTitle and SiteURL are sent as OpenRouter attribution headers.
	AppTitle string `yaml:"app_title"`
	SiteURL  string `yaml:"site_url"`
}

// RetryConfig configures retries of transient failures. MaxAttempts of 1
// disables retrying.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" env:"TRIVIA_LLM_RETRY_ATTEMPTS"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAuto,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp", AppTitle: "trivia"},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// WithDefaults fills unset fields from DefaultConfig, so a partial config
// such as a provider name alone is usable.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = d.Anthropic.Model
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = d.OpenAI.Model
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = d.Gemini.Model
	}
	if c.OpenRouter.Model == "" {
		c.OpenRouter.Model = d.OpenRouter.Model
	}
	if c.OpenRouter.AppTitle == "" {
		c.OpenRouter.AppTitle = d.OpenRouter.AppTitle
	}
	if c.Retry == (RetryConfig{}) {
		c.Retry = d.Retry
	}
	return c
}

// standardKeys lists the provider-neutral key variables in discovery order.
var standardKeys = []struct {
	provider string
	env      string
}{
	{"gemini", "GEMINI_API_KEY"},
	{"openai", "OPENAI_API_KEY"},
	{"anthropic", "ANTHROPIC_API_KEY"},
	{"openrouter", "OPENROUTER_API_KEY"},
}

// Resolve settles ProviderAuto and fills an empty API key of the chosen
// provider from its standard variable, e.g. ANTHROPIC_API_KEY. The result
// is validated.
func (c Config) Resolve() (Config, error) {
	if c.Provider == ProviderAuto || c.Provider == "" {
		found := false
		for _, k := range standardKeys {
			if os.Getenv(k.env) != "" || c.apiKey(k.provider) != "" {
				c.Provider = k.provider
				found = true
				break
			}
		}
		if !found {
			return Config{}, errors.New("no LLM provider configured: set TRIVIA_LLM_PROVIDER and its API key, or one of GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY")
		}
	}

	for _, k := range standardKeys {
		if k.provider == c.Provider && c.apiKey(k.provider) == "" {
			c.setAPIKey(k.provider, os.Getenv(k.env))
		}
	}
	return c, c.Validate()
}

func (c *Config) apiKey(provider string) string {
	switch provider {
	case "anthropic":
		return c.Anthropic.APIKey
	case "openai":
		return c.OpenAI.APIKey
	case "gemini":
		return c.Gemini.APIKey
	case "openrouter":
		return c.OpenRouter.APIKey
	}
	return ""
}

func (c *Config) setAPIKey(provider, key string) {
	switch provider {
	case "anthropic":
		c.Anthropic.APIKey = key
	case "openai":
		c.OpenAI.APIKey = key
	case "gemini":
		c.Gemini.APIKey = key
	case "openrouter":
		c.OpenRouter.APIKey = key
	}
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "gemini", "openrouter":
		if c.apiKey(c.Provider) == "" {
			return fmt.Errorf("an API key is required for the %s provider", c.Provider)
		}
	case "mock":
	case ProviderAuto:
		return errors.New("LLM provider not resolved")
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
