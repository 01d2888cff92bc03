// Package ledger keeps the per-user running total of coins awarded today
// and enforces the daily cap.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/trivia/internal/store"
)

// DocumentKey is the document store key holding the daily ledger.
const DocumentKey = "trivia/daily_rewards"

// Entry is one user's award total for Date.
type Entry struct {
	Date         string `json:"date"`
	TotalAwarded int    `json:"total_awarded"`
}

// Day formats t as the calendar date used for ledger entries.
func Day(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Ledger is the daily reward ledger. Reservations for a user are atomic.
type Ledger struct {
	mu      sync.Mutex
	ds      store.DocumentStore
	entries map[string]Entry
}

// Load reads the ledger document, starting empty when none exists.
func Load(ctx context.Context, ds store.DocumentStore) (*Ledger, error) {
	entries := make(map[string]Entry)
	if _, err := store.GetJSON(ctx, ds, DocumentKey, &entries); err != nil {
		return nil, fmt.Errorf("load daily ledger: %w", err)
	}
	return &Ledger{ds: ds, entries: entries}, nil
}

// Awarded returns the total awarded to userID on day. Entries from an
// earlier day count as zero.
func (l *Ledger) Awarded(userID, day string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[userID]
	if e.Date != day {
		return 0
	}
	return e.TotalAwarded
}

// Reserve grants up to want coins to userID on day without exceeding
// dailyCap, records the grant and returns it. A result of zero means the
// cap is exhausted. The in-memory reservation stands even when the flush
// fails; the error is returned alongside the amount.
func (l *Ledger) Reserve(ctx context.Context, userID string, want, dailyCap int, day string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[userID]
	if e.Date != day {
		e = Entry{Date: day}
	}

	payout := max(0, min(want, dailyCap-e.TotalAwarded))
	if payout == 0 {
		return 0, nil
	}

	e.TotalAwarded += payout
	l.entries[userID] = e
	if err := store.PutJSON(ctx, l.ds, DocumentKey, l.entries); err != nil {
		return payout, fmt.Errorf("save daily ledger: %w", err)
	}
	return payout, nil
}

// Reset drops every entry.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]Entry)
	return l.ds.Delete(ctx, DocumentKey)
}
