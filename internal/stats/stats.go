// Package stats tracks per-user quiz results: correct answers, rounds
// played and the last display name seen.
package stats

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/abhisek/trivia/internal/store"
)

// DocumentKey is the document store key holding user stats.
const DocumentKey = "trivia/user_stats"

// UserStat is the record kept for one user.
type UserStat struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Correct     int    `json:"correct"`
	Attempts    int    `json:"attempts"`
}

// Accuracy returns Correct/Attempts, or 0 for users without attempts.
func (u UserStat) Accuracy() float64 {
	if u.Attempts == 0 {
		return 0
	}
	return float64(u.Correct) / float64(u.Attempts)
}

// Ranked is a leaderboard row.
type Ranked struct {
	Rank int
	UserStat
}

// document keeps users as a list so first-insertion order survives a
// round trip through the store.
type document struct {
	Users []*UserStat `json:"users"`
}

// Store holds user stats in first-insertion order.
type Store struct {
	mu    sync.Mutex
	ds    store.DocumentStore
	users []*UserStat
	index map[string]*UserStat
}

// Load reads the stats document, starting empty when none exists.
func Load(ctx context.Context, ds store.DocumentStore) (*Store, error) {
	var doc document
	if _, err := store.GetJSON(ctx, ds, DocumentKey, &doc); err != nil {
		return nil, fmt.Errorf("load user stats: %w", err)
	}
	s := &Store{ds: ds, index: make(map[string]*UserStat, len(doc.Users))}
	for _, u := range doc.Users {
		if u == nil || u.UserID == "" {
			continue
		}
		if _, dup := s.index[u.UserID]; dup {
			continue
		}
		s.users = append(s.users, u)
		s.index[u.UserID] = u
	}
	return s, nil
}

// RecordGuess refreshes the user's display name and, when firstInRound is
// set, counts one more attempt.
func (s *Store) RecordGuess(ctx context.Context, userID, displayName string, firstInRound bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, changed := s.upsert(userID, displayName)
	if firstInRound {
		u.Attempts++
		changed = true
	}
	if !changed {
		return nil
	}
	return s.flush(ctx)
}

// RecordWin counts one correct answer for the user.
func (s *Store) RecordWin(ctx context.Context, userID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, _ := s.upsert(userID, displayName)
	u.Correct++
	return s.flush(ctx)
}

// Get returns a copy of the user's record.
func (s *Store) Get(userID string) (UserStat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.index[userID]
	if !ok {
		return UserStat{}, false
	}
	return *u, true
}

// Top returns up to n users ranked by correct answers, descending. Ties
// keep first-insertion order. n <= 0 returns everyone.
func (s *Store) Top(n int) []Ranked {
	s.mu.Lock()
	ordered := make([]UserStat, len(s.users))
	for i, u := range s.users {
		ordered[i] = *u
	}
	s.mu.Unlock()

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Correct > ordered[j].Correct
	})
	if n > 0 && len(ordered) > n {
		ordered = ordered[:n]
	}

	out := make([]Ranked, len(ordered))
	for i, u := range ordered {
		out[i] = Ranked{Rank: i + 1, UserStat: u}
	}
	return out
}

// Reset drops every record.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = nil
	s.index = make(map[string]*UserStat)
	return s.ds.Delete(ctx, DocumentKey)
}

// upsert reports whether it added the user or changed their display name.
func (s *Store) upsert(userID, displayName string) (*UserStat, bool) {
	u, ok := s.index[userID]
	changed := !ok
	if !ok {
		u = &UserStat{UserID: userID}
		s.users = append(s.users, u)
		s.index[userID] = u
	}
	if displayName != "" && displayName != u.DisplayName {
		u.DisplayName = displayName
		changed = true
	}
	return u, changed
}

func (s *Store) flush(ctx context.Context) error {
	if err := store.PutJSON(ctx, s.ds, DocumentKey, document{Users: s.users}); err != nil {
		return fmt.Errorf("save user stats: %w", err)
	}
	return nil
}
