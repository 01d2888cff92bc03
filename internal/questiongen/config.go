package questiongen

import "time"

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Topics is the pool topics are drawn from when none is requested.
	Topics []string `yaml:"topics" env:"TRIVIA_TOPICS" envSeparator:","`

	// StyleSeeds are angle/style words; one is chosen per question to
	// push the model away from the obvious question.
	StyleSeeds []string `yaml:"style_seeds" env:"TRIVIA_STYLE_SEEDS" envSeparator:","`

	// TopicHistory is how many recent topic picks are penalized.
	TopicHistory int `yaml:"topic_history" env:"TRIVIA_TOPIC_HISTORY"`

	// AvoidSample is how many stored answer sets are named in the prompt
	// as answers to avoid.
	AvoidSample int `yaml:"avoid_sample"`

	// Timeout bounds each model call.
	Timeout time.Duration `yaml:"timeout" env:"TRIVIA_GENERATION_TIMEOUT"`

	// Temperature and TopP are the sampling parameters of the first
	// draft. The corrective draft uses Temperature+0.1.
	Temperature float64 `yaml:"temperature" env:"TRIVIA_TEMPERATURE"`
	TopP        float64 `yaml:"top_p" env:"TRIVIA_TOP_P"`

	// MaxTokens is the token budget for the model response.
	MaxTokens int `yaml:"max_tokens"`
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		Topics:       []string{"History", "Science", "Geography", "Literature", "Music", "Sports"},
		StyleSeeds:   []string{"surprising", "everyday", "origins", "record-breaking", "little-known", "famous firsts"},
		TopicHistory: 5,
		AvoidSample:  5,
		Timeout:      30 * time.Second,
		Temperature:  0.8,
		TopP:         0.95,
		MaxTokens:    1024,
	}
}

// correctiveTemperatureStep is added to Temperature for the corrective draft.
const correctiveTemperatureStep = 0.1

// maxTemperature is the upper bound accepted by every provider.
const maxTemperature = 2.0
