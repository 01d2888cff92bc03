// Package history remembers the answer sets of every question asked per
// topic so that new questions can be checked for repeats.
package history

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/samber/lo"

	"github.com/abhisek/trivia/internal/store"
	"github.com/abhisek/trivia/internal/textnorm"
)

// DocumentKey is the document store key holding the answer history.
const DocumentKey = "trivia/answer_history"

// document is the persisted form: topic → ordered answer sets.
type document struct {
	Topics map[string][][]string `json:"topics"`
}

// Store is the append-only answer history. All methods are safe for
// concurrent use; mutations are flushed to the document store before they
// return.
type Store struct {
	mu     sync.Mutex
	ds     store.DocumentStore
	topics map[string][][]string
}

// Load reads the history document, starting empty when none exists.
func Load(ctx context.Context, ds store.DocumentStore) (*Store, error) {
	var doc document
	if _, err := store.GetJSON(ctx, ds, DocumentKey, &doc); err != nil {
		return nil, fmt.Errorf("load answer history: %w", err)
	}
	if doc.Topics == nil {
		doc.Topics = make(map[string][][]string)
	}
	return &Store{ds: ds, topics: doc.Topics}, nil
}

// Sets returns a copy of the stored answer sets for topic, oldest first.
func (s *Store) Sets(topic string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Map(s.topics[topic], func(set []string, _ int) []string {
		return append([]string(nil), set...)
	})
}

// Conflicts returns the normalized answers of candidate that already appear
// in any stored set for topic. An empty result means the candidate is new.
func (s *Store) Conflicts(topic string, candidate []string) []string {
	normalized := textnorm.Set(candidate)

	s.mu.Lock()
	defer s.mu.Unlock()

	var hits []string
	for _, set := range s.topics[topic] {
		hits = append(hits, lo.Intersect(normalized, set)...)
	}
	return lo.Uniq(hits)
}

// Sample returns the answers of at most k randomly chosen stored sets for
// topic, flattened and de-duplicated. It returns nil when the topic has no
// history.
func (s *Store) Sample(topic string, k int, rng *rand.Rand) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets := s.topics[topic]
	if len(sets) == 0 || k <= 0 {
		return nil
	}
	k = min(k, len(sets))
	picked := make([][]string, 0, k)
	for _, i := range rng.Perm(len(sets))[:k] {
		picked = append(picked, sets[i])
	}
	return lo.Uniq(lo.Flatten(picked))
}

// Append records the normalized answer set under topic and flushes.
func (s *Store) Append(ctx context.Context, topic string, answers []string) error {
	set := textnorm.Set(answers)
	if len(set) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.topics[topic] = append(s.topics[topic], set)
	if err := store.PutJSON(ctx, s.ds, DocumentKey, document{Topics: s.topics}); err != nil {
		return fmt.Errorf("save answer history: %w", err)
	}
	return nil
}

// Len returns the number of stored answer sets for topic.
func (s *Store) Len(topic string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.topics[topic])
}

// Reset drops the whole history.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = make(map[string][][]string)
	return s.ds.Delete(ctx, DocumentKey)
}
