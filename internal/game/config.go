package game

import "time"

// Config holds round settings.
type Config struct {
	// RoundTimeout is how long a round stays open before the answers are
	// revealed.
	RoundTimeout time.Duration `yaml:"round_timeout" env:"TRIVIA_ROUND_TIMEOUT"`

	// LeaderboardSize is the default number of ranked users shown.
	LeaderboardSize int `yaml:"leaderboard_size"`
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		RoundTimeout:    60 * time.Second,
		LeaderboardSize: 10,
	}
}
