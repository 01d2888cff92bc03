// Package reward turns a winning answer into a coin payout.
package reward

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/abhisek/trivia/internal/economy"
	"github.com/abhisek/trivia/internal/ledger"
	"github.com/abhisek/trivia/internal/questiongen"
)

// Round is the state of a won round that affects the payout.
type Round struct {
	Difficulty   questiongen.Difficulty
	WrongGuesses int
	HintsGiven   int
}

// Result describes one payout.
type Result struct {
	// Reward is the formula result before the daily cap.
	Reward int

	// Payout is what the user receives after the cap.
	Payout int

	// Capped is set when the cap cut the payout below Reward.
	Capped bool

	// Granted reports whether the economy accepted the payout. A failed
	// credit is not rolled back anywhere else.
	Granted bool
}

// Calculator computes and pays rewards.
type Calculator struct {
	config Config
	ledger *ledger.Ledger
	wallet economy.Wallet
	logger *slog.Logger
}

// New creates a Calculator. wallet may be nil, in which case rewards are
// computed but nothing is reserved or paid.
func New(cfg Config, l *ledger.Ledger, wallet economy.Wallet, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{config: cfg, ledger: l, wallet: wallet, logger: logger}
}

// Formula returns floor(base * difficulty * penalty * 0.5^hints).
func (c *Calculator) Formula(r Round) int {
	mult, ok := c.config.Multipliers[r.Difficulty]
	if !ok {
		mult = 1.0
	}
	penalty := math.Max(1-c.config.MaxPenalty, 1-float64(r.WrongGuesses)*c.config.PerGuessPenalty)
	decay := math.Pow(0.5, float64(r.HintsGiven))

	// The epsilon absorbs binary rounding such as 50*0.7 = 34.999...
	v := float64(c.config.Base) * mult * penalty * decay
	return int(math.Floor(v + 1e-9))
}

// Compute applies the formula, reserves the payout against userID's daily
// cap for the calendar day of now, and credits it.
func (c *Calculator) Compute(ctx context.Context, r Round, userID string, now time.Time) Result {
	res := Result{Reward: c.Formula(r)}
	if res.Reward <= 0 || c.wallet == nil {
		return res
	}

	payout, err := c.ledger.Reserve(ctx, userID, res.Reward, c.config.DailyCap, ledger.Day(now))
	if err != nil {
		c.logger.Warn("daily ledger not persisted", "user", userID, "err", err)
	}
	res.Payout = payout
	res.Capped = payout < res.Reward
	if payout == 0 {
		return res
	}

	ok, err := c.wallet.AddCoins(ctx, userID, payout, c.config.Reason)
	switch {
	case err != nil:
		c.logger.Error("coin credit failed", "user", userID, "amount", payout, "err", err)
	case !ok:
		c.logger.Error("coin credit refused", "user", userID, "amount", payout)
	default:
		res.Granted = true
	}
	return res
}
