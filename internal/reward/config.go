package reward

import "github.com/abhisek/trivia/internal/questiongen"

// Config holds the reward formula parameters.
type Config struct {
	Base int `yaml:"base" env:"TRIVIA_REWARD_BASE"`

	// Multipliers scales Base by question difficulty. Unknown
	// difficulties use 1.0.
	Multipliers map[questiongen.Difficulty]float64 `yaml:"multipliers"`

	// PerGuessPenalty is subtracted from the multiplier for every wrong
	// guess in the round, down to 1-MaxPenalty.
	PerGuessPenalty float64 `yaml:"per_guess_penalty"`
	MaxPenalty      float64 `yaml:"max_penalty"`

	// DailyCap limits the coins one user can win per calendar day.
	DailyCap int `yaml:"daily_cap" env:"TRIVIA_DAILY_CAP"`

	// Reason is sent to the economy with every payout.
	Reason string `yaml:"reason"`
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		Base: 50,
		Multipliers: map[questiongen.Difficulty]float64{
			questiongen.Easy:   1.0,
			questiongen.Normal: 1.3,
			questiongen.Hard:   2.0,
		},
		PerGuessPenalty: 0.1,
		MaxPenalty:      0.5,
		DailyCap:        1000,
		Reason:          "trivia win",
	}
}
