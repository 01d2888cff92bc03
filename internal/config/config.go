// Package config assembles the process configuration from defaults, an
// optional YAML file and TRIVIA_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/trivia/internal/game"
	"github.com/abhisek/trivia/internal/llm"
	"github.com/abhisek/trivia/internal/matcher"
	"github.com/abhisek/trivia/internal/questiongen"
	"github.com/abhisek/trivia/internal/reward"
	"github.com/abhisek/trivia/internal/telemetry"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Economy backends.
const (
	EconomyDocument = "document"
	EconomyRedis    = "redis"
	EconomyNone     = "none"
)

type Config struct {
	LLM       llm.Config         `yaml:"llm"`
	Game      game.Config        `yaml:"game"`
	Questions questiongen.Config `yaml:"questions"`
	Matcher   matcher.Config     `yaml:"matcher"`
	Rewards   reward.Config      `yaml:"rewards"`
	Storage   StorageConfig      `yaml:"storage"`
	Economy   EconomyConfig      `yaml:"economy"`
	Server    ServerConfig       `yaml:"server"`
	Telemetry telemetry.Config   `yaml:"telemetry"`
}

// StorageConfig selects where the history, stats and ledger documents live.
type StorageConfig struct {
	// Backend is one of sqlite, redis, postgres or memory. sqlite uses the
	// --db path.
	Backend string `yaml:"backend" env:"TRIVIA_STORAGE"`

	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"TRIVIA_REDIS_ADDR"`
	Password string `yaml:"password" env:"TRIVIA_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"TRIVIA_REDIS_DB"`

	// Prefix namespaces document keys so several deployments can share
	// one server.
	Prefix string `yaml:"prefix" env:"TRIVIA_REDIS_PREFIX"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"TRIVIA_POSTGRES_URL"`
}

// EconomyConfig selects the wallet coins are credited to.
type EconomyConfig struct {
	Backend string `yaml:"backend" env:"TRIVIA_ECONOMY"`

	// RedisKey is the hash holding balances for the redis backend.
	RedisKey string `yaml:"redis_key" env:"TRIVIA_ECONOMY_REDIS_KEY"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"TRIVIA_ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AllowedOrigins restricts websocket upgrades. Empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins" env:"TRIVIA_ALLOWED_ORIGINS" envSeparator:","`
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		LLM:       llm.DefaultConfig(),
		Game:      game.DefaultConfig(),
		Questions: questiongen.DefaultConfig(),
		Matcher:   matcher.DefaultConfig(),
		Rewards:   reward.DefaultConfig(),
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "trivia:"},
		},
		Economy: EconomyConfig{Backend: EconomyDocument, RedisKey: "trivia:wallets"},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment. It does not validate.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	// TRIVIA_LLM_* address the question model; keep them off the arbiter's.
	arbiter := cfg.Matcher.Arbiter.LLM
	cfg.Matcher.Arbiter.LLM = nil
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Matcher.Arbiter.LLM = arbiter
	return cfg, nil
}

// ArbiterLLM resolves the arbiter's own model settings. ok is false when
// the arbiter is disabled or shares the question model.
func (c Config) ArbiterLLM() (cfg llm.Config, ok bool, err error) {
	a := c.Matcher.Arbiter
	if !a.Enabled || a.LLM == nil {
		return llm.Config{}, false, nil
	}
	cfg, err = a.LLM.WithDefaults().Resolve()
	if err != nil {
		return llm.Config{}, false, fmt.Errorf("matcher.arbiter.llm: %w", err)
	}
	return cfg, true, nil
}

// Validate reports every invalid setting that is not specific to the LLM
// provider; call LLM.Resolve separately where a provider is required.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Game.RoundTimeout > 0, "game.round_timeout must be positive, got %s", c.Game.RoundTimeout)

	q := c.Questions
	check(q.Timeout > 0, "questions.timeout must be positive, got %s", q.Timeout)
	check(q.Temperature >= 0 && q.Temperature <= 2, "questions.temperature must be in [0, 2], got %g", q.Temperature)
	check(q.TopP >= 0 && q.TopP <= 1, "questions.top_p must be in [0, 1], got %g", q.TopP)
	check(q.TopicHistory >= 0, "questions.topic_history must not be negative")

	check(c.Matcher.Threshold > 0 && c.Matcher.Threshold <= 1,
		"matcher.similarity_threshold must be in (0, 1], got %g", c.Matcher.Threshold)
	if c.Matcher.Arbiter.Enabled {
		check(c.Matcher.Arbiter.CorrectToken != "", "matcher.arbiter.correct_token is required when the arbiter is enabled")
		if _, _, err := c.ArbiterLLM(); err != nil {
			errs = append(errs, err)
		}
	}

	r := c.Rewards
	check(r.Base >= 0, "rewards.base must not be negative")
	check(r.DailyCap >= 0, "rewards.daily_cap must not be negative")
	check(r.PerGuessPenalty >= 0, "rewards.per_guess_penalty must not be negative")
	check(r.MaxPenalty >= 0 && r.MaxPenalty <= 1, "rewards.max_penalty must be in [0, 1], got %g", r.MaxPenalty)

	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		check(c.Storage.Redis.Addr != "", "storage.redis.addr is required for the redis backend")
	case BackendPostgres:
		check(c.Storage.Postgres.URL != "", "storage.postgres.url is required for the postgres backend")
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	switch c.Economy.Backend {
	case EconomyDocument, EconomyNone:
	case EconomyRedis:
		check(c.Storage.Redis.Addr != "", "storage.redis.addr is required for the redis economy")
	default:
		errs = append(errs, fmt.Errorf("unknown economy backend %q", c.Economy.Backend))
	}

	if c.Telemetry.Enabled {
		check(c.Telemetry.SampleRatio >= 0 && c.Telemetry.SampleRatio <= 1,
			"telemetry.sample_ratio must be in [0, 1], got %g", c.Telemetry.SampleRatio)
	}

	return errors.Join(errs...)
}
