// Package economy credits quiz winnings to user wallets.
package economy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/trivia/internal/store"
)

// ErrInvalidAmount is returned for non-positive credits.
var ErrInvalidAmount = errors.New("amount must be positive")

// Wallet is the coin ledger the game pays into. AddCoins reports whether
// the credit was applied.
type Wallet interface {
	AddCoins(ctx context.Context, userID string, amount int, reason string) (bool, error)
	Balance(ctx context.Context, userID string) (int, error)
}

// Credit records one successful AddCoins call.
type Credit struct {
	UserID    string    `json:"user_id"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentKey is the document store key for DocumentWallet.
const DocumentKey = "trivia/wallets"

// maxCredits bounds the recent-credit log kept in the wallet document.
const maxCredits = 200

type walletDocument struct {
	Balances map[string]int `json:"balances"`
	Recent   []Credit       `json:"recent"`
}

// DocumentWallet keeps balances in a single document.
type DocumentWallet struct {
	mu  sync.Mutex
	ds  store.DocumentStore
	doc walletDocument
}

// LoadDocumentWallet reads the wallet document, starting empty when none
// exists.
func LoadDocumentWallet(ctx context.Context, ds store.DocumentStore) (*DocumentWallet, error) {
	var doc walletDocument
	if _, err := store.GetJSON(ctx, ds, DocumentKey, &doc); err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}
	if doc.Balances == nil {
		doc.Balances = make(map[string]int)
	}
	return &DocumentWallet{ds: ds, doc: doc}, nil
}

func (w *DocumentWallet) AddCoins(ctx context.Context, userID string, amount int, reason string) (bool, error) {
	if amount <= 0 {
		return false, ErrInvalidAmount
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	prevRecent := w.doc.Recent
	w.doc.Balances[userID] += amount
	w.doc.Recent = append(w.doc.Recent, Credit{
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	})
	if len(w.doc.Recent) > maxCredits {
		w.doc.Recent = w.doc.Recent[len(w.doc.Recent)-maxCredits:]
	}

	if err := store.PutJSON(ctx, w.ds, DocumentKey, w.doc); err != nil {
		w.doc.Balances[userID] -= amount
		w.doc.Recent = prevRecent
		return false, fmt.Errorf("save wallets: %w", err)
	}
	slog.Debug("coins credited", "user", userID, "amount", amount, "reason", reason)
	return true, nil
}

func (w *DocumentWallet) Balance(_ context.Context, userID string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doc.Balances[userID], nil
}

// Recent returns the most recent credits, newest last.
func (w *DocumentWallet) Recent() []Credit {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Credit(nil), w.doc.Recent...)
}

// RedisWallet keeps balances in a Redis hash so several servers can share
// them.
type RedisWallet struct {
	client *redis.Client
	key    string
}

// NewRedisWallet creates a wallet on the given hash key. An empty key uses
// "trivia:wallets".
func NewRedisWallet(client *redis.Client, key string) *RedisWallet {
	if key == "" {
		key = "trivia:wallets"
	}
	return &RedisWallet{client: client, key: key}
}

func (w *RedisWallet) AddCoins(ctx context.Context, userID string, amount int, reason string) (bool, error) {
	if amount <= 0 {
		return false, ErrInvalidAmount
	}
	if err := w.client.HIncrBy(ctx, w.key, userID, int64(amount)).Err(); err != nil {
		return false, fmt.Errorf("credit %s: %w", userID, err)
	}
	slog.Debug("coins credited", "user", userID, "amount", amount, "reason", reason)
	return true, nil
}

func (w *RedisWallet) Balance(ctx context.Context, userID string) (int, error) {
	n, err := w.client.HGet(ctx, w.key, userID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance %s: %w", userID, err)
	}
	return n, nil
}
