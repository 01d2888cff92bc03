package matcher

import (
	"time"

	"github.com/abhisek/trivia/internal/llm"
)

// Config controls answer matching.
type Config struct {
	// Threshold is the minimum similarity for a fuzzy match.
	Threshold float64 `yaml:"similarity_threshold" env:"TRIVIA_SIMILARITY_THRESHOLD"`

	Arbiter ArbiterConfig `yaml:"arbiter"`
}

// ArbiterConfig controls the model fallback for answers that neither
// match exactly nor fuzzily.
type ArbiterConfig struct {
	Enabled bool `yaml:"enabled" env:"TRIVIA_ARBITER_ENABLED"`

	// Timeout bounds one arbiter call.
	Timeout time.Duration `yaml:"timeout" env:"TRIVIA_ARBITER_TIMEOUT"`

	// CorrectToken is the word in the reply that grants credit.
	CorrectToken string `yaml:"correct_token"`

	// Interval and Burst rate limit arbiter calls per room. A zero
	// Interval disables the limit.
	Interval time.Duration `yaml:"interval" env:"TRIVIA_ARBITER_INTERVAL"`
	Burst    int           `yaml:"burst"`

	// LLM selects a separate model for arbitration. Nil reuses the
	// question model. It is read from the config file only.
	LLM *llm.Config `yaml:"llm"`
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		Threshold: 0.85,
		Arbiter: ArbiterConfig{
			Enabled:      false,
			Timeout:      10 * time.Second,
			CorrectToken: "CORRECT",
			Interval:     2 * time.Second,
			Burst:        3,
		},
	}
}
