package llm

import "testing"

func clearStandardKeys(t *testing.T) {
	t.Helper()
	for _, k := range standardKeys {
		t.Setenv(k.env, "")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"anthropic without key", func(c *Config) { c.Provider = "anthropic" }, true},
		{"anthropic with key", func(c *Config) { c.Provider = "anthropic"; c.Anthropic.APIKey = "k" }, false},
		{"openai without key", func(c *Config) { c.Provider = "openai" }, true},
		{"gemini with key", func(c *Config) { c.Provider = "gemini"; c.Gemini.APIKey = "k" }, false},
		{"openrouter without key", func(c *Config) { c.Provider = "openrouter" }, true},
		{"mock", func(c *Config) { c.Provider = "mock" }, false},
		{"unresolved auto", func(c *Config) {}, true},
		{"unknown", func(c *Config) { c.Provider = "llama" }, true},
		{"zero attempts", func(c *Config) { c.Provider = "mock"; c.Retry.MaxAttempts = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolve_Auto(t *testing.T) {
	clearStandardKeys(t)
	if _, err := DefaultConfig().Resolve(); err == nil {
		t.Fatal("expected an error without any key")
	}

	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("OPENROUTER_API_KEY", "o")
	cfg, err := DefaultConfig().Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "a" {
		t.Fatalf("expected anthropic to win over openrouter, got %q", cfg.Provider)
	}
}

func TestResolve_ConfiguredKeyWinsForAuto(t *testing.T) {
	clearStandardKeys(t)
	cfg := DefaultConfig()
	cfg.OpenRouter.APIKey = "from-file"

	got, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Provider != "openrouter" || got.OpenRouter.APIKey != "from-file" {
		t.Fatalf("unexpected resolution: %+v", got)
	}
}

func TestResolve_FillsMissingKey(t *testing.T) {
	clearStandardKeys(t)
	t.Setenv("OPENAI_API_KEY", "sk-standard")

	cfg := DefaultConfig()
	cfg.Provider = "openai"
	got, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OpenAI.APIKey != "sk-standard" {
		t.Fatalf("expected key from OPENAI_API_KEY, got %q", got.OpenAI.APIKey)
	}

	cfg.OpenAI.APIKey = "sk-explicit"
	if got, _ = cfg.Resolve(); got.OpenAI.APIKey != "sk-explicit" {
		t.Fatalf("explicit key must not be replaced, got %q", got.OpenAI.APIKey)
	}
}

func TestResolve_MockNeedsNoKey(t *testing.T) {
	clearStandardKeys(t)
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	if _, err := cfg.Resolve(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{Provider: "openai", OpenAI: OpenAIConfig{Model: "gpt-4o"}}.WithDefaults()

	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("configured model replaced: %q", cfg.OpenAI.Model)
	}
	if cfg.Anthropic.Model != "claude-haiku" {
		t.Errorf("anthropic model = %q, want default", cfg.Anthropic.Model)
	}
	if cfg.Retry.MaxAttempts != 1 {
		t.Errorf("retry attempts = %d, want 1", cfg.Retry.MaxAttempts)
	}
	if cfg.OpenRouter.AppTitle != "trivia" {
		t.Errorf("app title = %q", cfg.OpenRouter.AppTitle)
	}
	if got := (Config{}).WithDefaults().Provider; got != ProviderAuto {
		t.Errorf("empty provider = %q, want auto", got)
	}
}
