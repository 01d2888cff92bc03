package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/trivia/internal/questiongen"
	"github.com/abhisek/trivia/internal/timer"
)

// Session is one live round. It is owned by the Manager and never handed
// out; callers see Snapshots.
type Session struct {
	ID        string
	Room      string
	Question  *questiongen.Question
	StartedAt time.Time
	Deadline  time.Time

	// answerMu serializes Submit for the room.
	answerMu sync.Mutex

	mu           sync.Mutex
	hintsGiven   int
	wrongGuesses int
	participants map[string]struct{}

	// Guarded by Manager.mu.
	active bool
	timer  timer.Token
}

func newSession(room string, q *questiongen.Question, now time.Time, timeout time.Duration) *Session {
	return &Session{
		ID:           uuid.NewString(),
		Room:         room,
		Question:     q,
		StartedAt:    now,
		Deadline:     now.Add(timeout),
		participants: make(map[string]struct{}),
	}
}

// join records userID as a participant and reports whether this was the
// user's first guess in the round.
func (s *Session) join(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[userID]; ok {
		return false
	}
	s.participants[userID] = struct{}{}
	return true
}

func (s *Session) addWrong() {
	s.mu.Lock()
	s.wrongGuesses++
	s.mu.Unlock()
}

func (s *Session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:           s.ID,
		Room:         s.Room,
		Question:     s.Question,
		HintsGiven:   s.hintsGiven,
		WrongGuesses: s.wrongGuesses,
		Participants: len(s.participants),
		StartedAt:    s.StartedAt,
		Deadline:     s.Deadline,
	}
}

// Snapshot is a point-in-time copy of a session's state.
type Snapshot struct {
	ID           string
	Room         string
	Question     *questiongen.Question
	HintsGiven   int
	WrongGuesses int
	Participants int
	StartedAt    time.Time
	Deadline     time.Time
}
