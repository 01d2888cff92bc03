// Package game runs one trivia round per room: it starts rounds, judges
// answers, pays rewards and retires rounds on a win, a manual end or a
// timeout.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/trivia/internal/matcher"
	"github.com/abhisek/trivia/internal/questiongen"
	"github.com/abhisek/trivia/internal/reward"
	"github.com/abhisek/trivia/internal/stats"
	"github.com/abhisek/trivia/internal/timer"
)

// Manager owns the room registry. Safe for concurrent use.
type Manager struct {
	config    Config
	generator questiongen.Generator
	matcher   *matcher.Matcher
	rewards   *reward.Calculator
	stats     *stats.Store
	timers    *timer.Scheduler
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time

	// mu guards the registry and the generating set, and every session's
	// active flag.
	mu         sync.Mutex
	sessions   map[string]*Session
	generating map[string]struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier sets where timeout and duplicate notices go.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides time.Now, which decides the reward day.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a Manager.
func New(cfg Config, gen questiongen.Generator, mt *matcher.Matcher, rewards *reward.Calculator, st *stats.Store, opts ...Option) *Manager {
	m := &Manager{
		config:     cfg,
		generator:  gen,
		matcher:    mt,
		rewards:    rewards,
		stats:      st,
		timers:     timer.New(),
		notifier:   NopNotifier{},
		logger:     slog.Default(),
		now:        time.Now,
		sessions:   make(map[string]*Session),
		generating: make(map[string]struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start generates a question and opens a round in room. difficulty may be
// empty to let the generator draw one.
func (m *Manager) Start(ctx context.Context, room, difficulty string) (*Announcement, error) {
	m.mu.Lock()
	if _, ok := m.sessions[room]; ok {
		m.mu.Unlock()
		return nil, ErrAlreadyActive
	}
	if _, ok := m.generating[room]; ok {
		m.mu.Unlock()
		return nil, ErrGenerationInProgress
	}
	m.generating[room] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.generating, room)
		m.mu.Unlock()
	}()

	var diff questiongen.Difficulty
	if strings.TrimSpace(difficulty) != "" {
		d, err := questiongen.ParseDifficulty(difficulty)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDifficulty, difficulty)
		}
		diff = d
	}

	q, err := m.generator.Generate(ctx, questiongen.GenerateInput{
		Difficulty: diff,
		Room:       room,
		OnDuplicate: func(topic string, conflicts []string) {
			m.logger.Info("duplicate question, regenerating", "room", room, "topic", topic, "conflicts", conflicts)
			m.notifier.Announce(room, Message{Kind: KindDuplicate, Text: duplicateText})
		},
	})
	if err != nil {
		m.logger.Warn("question generation failed", "room", room, "err", err)
		return nil, err
	}

	s := newSession(room, q, m.now(), m.config.RoundTimeout)

	// The generating guard keeps other Starts for room out until here.
	m.mu.Lock()
	s.active = true
	m.sessions[room] = s
	s.timer = m.timers.Arm(room, m.config.RoundTimeout, func() { m.expire(s) })
	m.mu.Unlock()

	m.logger.Info("round started", "room", room, "session", s.ID, "topic", q.Topic, "difficulty", q.Difficulty)
	return &Announcement{
		SessionID:   s.ID,
		Room:        room,
		Topic:       q.Topic,
		Difficulty:  q.Difficulty,
		Description: q.Description,
		HintCount:   len(q.Hints),
		Timeout:     m.config.RoundTimeout,
	}, nil
}

// Submit judges one answer. Only one submission per round can be Correct;
// every submission after the round is retired gets OutcomeNoSession.
func (m *Manager) Submit(ctx context.Context, room, userID, displayName, text string) (Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, ErrEmptyAnswer
	}

	s := m.lookup(room)
	if s == nil {
		return Outcome{Kind: OutcomeNoSession}, nil
	}
	s.answerMu.Lock()
	defer s.answerMu.Unlock()
	if !m.isActive(s) {
		return Outcome{Kind: OutcomeNoSession}, nil
	}

	out := Outcome{UserID: userID, DisplayName: displayName, Submitted: text}

	first := s.join(userID)
	if err := m.stats.RecordGuess(ctx, userID, displayName, first); err != nil {
		m.logger.Warn("saving guess failed", "user", userID, "err", err)
	}

	res := m.matcher.Check(ctx, room, s.Question, text)
	out.Stage = res.Stage
	if !res.Correct {
		if !m.isActive(s) {
			return Outcome{Kind: OutcomeNoSession}, nil
		}
		s.addWrong()
		out.Kind = OutcomeWrong
		return out, nil
	}

	if !m.retireIfActive(s) {
		return Outcome{Kind: OutcomeNoSession}, nil
	}
	m.timers.Cancel(s.timer)
	m.matcher.Forget(room)

	if err := m.stats.RecordWin(ctx, userID, displayName); err != nil {
		m.logger.Warn("saving win failed", "user", userID, "err", err)
	}

	snap := s.snapshot()
	out.Kind = OutcomeCorrect
	out.MatchedAnswer = matcher.BestMatch(s.Question, text)
	out.Reward = m.rewards.Compute(ctx, reward.Round{
		Difficulty:   s.Question.Difficulty,
		WrongGuesses: snap.WrongGuesses,
		HintsGiven:   snap.HintsGiven,
	}, userID, m.now())

	m.logger.Info("round won", "room", room, "session", s.ID, "user", userID,
		"stage", res.Stage, "reward", out.Reward.Reward, "payout", out.Reward.Payout)
	return out, nil
}

// End retires the round early and reveals the answers.
func (m *Manager) End(ctx context.Context, room, requestedBy string) (*Reveal, error) {
	m.mu.Lock()
	s, ok := m.sessions[room]
	if !ok || !s.active {
		m.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	s.active = false
	delete(m.sessions, room)
	m.mu.Unlock()

	m.timers.Cancel(s.timer)
	m.matcher.Forget(room)
	m.logger.Info("round ended", "room", room, "session", s.ID, "by", requestedBy)

	return &Reveal{
		Room:        room,
		Reason:      RevealEnded,
		RequestedBy: requestedBy,
		Answers:     append([]string(nil), s.Question.AcceptedAnswers...),
	}, nil
}

// Hint reveals the next hint of the active round.
func (m *Manager) Hint(room string) (Hint, error) {
	s := m.lookup(room)
	if s == nil {
		return Hint{}, ErrNoActiveSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(s.Question.Hints)
	if s.hintsGiven >= total {
		return Hint{}, ErrNoMoreHints
	}
	h := Hint{Text: s.Question.Hints[s.hintsGiven], Number: s.hintsGiven + 1, Total: total}
	s.hintsGiven++
	return h, nil
}

// Leaderboard returns the topN users by correct answers. topN <= 0 uses the
// configured size.
func (m *Manager) Leaderboard(topN int) []stats.Ranked {
	if topN <= 0 {
		topN = m.config.LeaderboardSize
	}
	return m.stats.Top(topN)
}

// Active returns a snapshot of the round running in room.
func (m *Manager) Active(room string) (Snapshot, bool) {
	s := m.lookup(room)
	if s == nil {
		return Snapshot{}, false
	}
	return s.snapshot(), true
}

// Rooms lists the rooms with a running round.
func (m *Manager) Rooms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]string, 0, len(m.sessions))
	for room := range m.sessions {
		rooms = append(rooms, room)
	}
	return rooms
}

// Shutdown retires every round without announcing anything and stops all
// timers. It returns the number of rounds dropped.
func (m *Manager) Shutdown() int {
	m.mu.Lock()
	n := len(m.sessions)
	for room, s := range m.sessions {
		s.active = false
		delete(m.sessions, room)
	}
	m.mu.Unlock()

	m.timers.CancelAll()
	return n
}

func (m *Manager) expire(s *Session) {
	if !m.retireIfActive(s) {
		return
	}
	m.matcher.Forget(s.Room)
	m.logger.Info("round timed out", "room", s.Room, "session", s.ID)

	reveal := Reveal{Room: s.Room, Reason: RevealTimeout, Answers: s.Question.AcceptedAnswers}
	m.notifier.Announce(s.Room, Message{
		Kind:    KindTimeout,
		Text:    reveal.Text(),
		Answers: append([]string(nil), s.Question.AcceptedAnswers...),
	})
}

// retireIfActive is the only way a live round ends by win or timeout. The
// caller that gets true owns the retirement.
func (m *Manager) retireIfActive(s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.active || m.sessions[s.Room] != s {
		return false
	}
	s.active = false
	delete(m.sessions, s.Room)
	return true
}

func (m *Manager) lookup(room string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[room]
	if !ok || !s.active {
		return nil
	}
	return s
}

func (m *Manager) isActive(s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return s.active
}
