package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/abhisek/trivia/internal/config"
	"github.com/abhisek/trivia/internal/economy"
	"github.com/abhisek/trivia/internal/game"
	"github.com/abhisek/trivia/internal/history"
	"github.com/abhisek/trivia/internal/ledger"
	"github.com/abhisek/trivia/internal/llm"
	"github.com/abhisek/trivia/internal/matcher"
	"github.com/abhisek/trivia/internal/questiongen"
	"github.com/abhisek/trivia/internal/reward"
	"github.com/abhisek/trivia/internal/stats"
	"github.com/abhisek/trivia/internal/store"
)

// backend is the opened persistence: the SQLite store always holds the LLM
// event log; documents live wherever the config says.
type backend struct {
	sqlite  *store.Store
	docs    store.DocumentStore
	redis   *redis.Client
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cmd *cobra.Command, cfg config.Config) (*backend, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	b := &backend{sqlite: st, docs: st.Documents()}
	b.closers = append(b.closers, func() { st.Close() })

	if cfg.Storage.Backend == config.BackendRedis || cfg.Economy.Backend == config.EconomyRedis {
		rc := cfg.Storage.Redis
		client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
		b.closers = append(b.closers, func() { client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("connect redis %s: %w", rc.Addr, err)
		}
		b.redis = client
	}

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		b.docs = store.NewRedisDocuments(b.redis, cfg.Storage.Redis.Prefix)
	case config.BackendPostgres:
		pg, err := store.OpenPostgresDocuments(ctx, cfg.Storage.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pg.Close)
		b.docs = pg
	case config.BackendMemory:
		b.docs = store.NewMemoryDocuments()
	}
	return b, nil
}

// engine is a fully wired game.Manager and the stores behind it.
type engine struct {
	*backend
	manager *game.Manager
	history *history.Store
	stats   *stats.Store
	ledger  *ledger.Ledger
	wallet  economy.Wallet
}

func buildEngine(ctx context.Context, cmd *cobra.Command, cfg config.Config, notifier game.Notifier, logger *slog.Logger) (*engine, error) {
	llmCfg, err := cfg.LLM.Resolve()
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	arbiterCfg, ownArbiter, err := cfg.ArbiterLLM()
	if err != nil {
		return nil, err
	}

	b, err := openBackend(ctx, cmd, cfg)
	if err != nil {
		return nil, err
	}
	e := &engine{backend: b}
	if err := e.load(ctx, cfg); err != nil {
		b.Close()
		return nil, err
	}

	provider, err := llm.NewProvider(ctx, llmCfg, b.sqlite.EventRepo())
	if err != nil {
		b.Close()
		return nil, err
	}

	var arbiter llm.Provider
	switch {
	case ownArbiter:
		arbiter, err = llm.NewProvider(ctx, arbiterCfg, b.sqlite.EventRepo())
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("arbiter provider: %w", err)
		}
	case cfg.Matcher.Arbiter.Enabled:
		arbiter = provider
	}

	gen := questiongen.New(provider, e.history, cfg.Questions, questiongen.WithLogger(logger))
	rewards := reward.New(cfg.Rewards, e.ledger, e.wallet, logger)
	e.manager = game.New(cfg.Game, gen,
		matcher.New(cfg.Matcher, arbiter, logger),
		rewards,
		e.stats,
		game.WithNotifier(notifier),
		game.WithLogger(logger),
	)
	return e, nil
}

func (e *engine) load(ctx context.Context, cfg config.Config) error {
	var err error
	if e.history, err = history.Load(ctx, e.docs); err != nil {
		return err
	}
	if e.stats, err = stats.Load(ctx, e.docs); err != nil {
		return err
	}
	if e.ledger, err = ledger.Load(ctx, e.docs); err != nil {
		return err
	}

	switch cfg.Economy.Backend {
	case config.EconomyDocument:
		w, err := economy.LoadDocumentWallet(ctx, e.docs)
		if err != nil {
			return err
		}
		e.wallet = w
	case config.EconomyRedis:
		if e.redis == nil {
			return errors.New("redis economy needs a redis connection")
		}
		e.wallet = economy.NewRedisWallet(e.redis, cfg.Economy.RedisKey)
	}
	return nil
}
