// Package matcher decides whether a submitted answer is correct: exact
// match, then fuzzy similarity, then an optional model arbiter.
package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/time/rate"

	"github.com/abhisek/trivia/internal/llm"
	"github.com/abhisek/trivia/internal/questiongen"
	"github.com/abhisek/trivia/internal/textnorm"
)

// PurposeArbiter labels arbiter model calls.
const PurposeArbiter = "answer-arbiter"

// Stage is the matching step that decided a result.
type Stage string

const (
	StageNone    Stage = ""
	StageExact   Stage = "exact"
	StageFuzzy   Stage = "fuzzy"
	StageArbiter Stage = "arbiter"
)

// Result is the outcome of matching one submission.
type Result struct {
	Correct bool
	Stage   Stage

	// Similarity is the best fuzzy ratio against any accepted answer.
	Similarity float64
}

// Matcher checks submissions against a question's accepted answers.
// Safe for concurrent use.
type Matcher struct {
	config  Config
	arbiter llm.Provider
	logger  *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Matcher. arbiter may be nil, which disables the last step
// regardless of config.
func New(cfg Config, arbiter llm.Provider, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		config:   cfg,
		arbiter:  arbiter,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
}

// IsCorrect reports whether submitted answers q.
func (m *Matcher) IsCorrect(ctx context.Context, room string, q *questiongen.Question, submitted string) bool {
	return m.Check(ctx, room, q, submitted).Correct
}

// Check runs the matching cascade and reports which step decided.
func (m *Matcher) Check(ctx context.Context, room string, q *questiongen.Question, submitted string) Result {
	sub := textnorm.Normalize(submitted)
	if sub == "" {
		return Result{}
	}

	var best float64
	for _, a := range q.AcceptedAnswers {
		acc := textnorm.Normalize(a)
		if acc == sub {
			return Result{Correct: true, Stage: StageExact, Similarity: 1}
		}
		best = max(best, Similarity(sub, acc))
	}
	if best >= m.config.Threshold {
		return Result{Correct: true, Stage: StageFuzzy, Similarity: best}
	}

	if m.arbitrate(ctx, room, q, submitted) {
		return Result{Correct: true, Stage: StageArbiter, Similarity: best}
	}
	return Result{Similarity: best}
}

// BestMatch returns the accepted answer most similar to submitted. Ties go
// to the earlier answer.
func BestMatch(q *questiongen.Question, submitted string) string {
	sub := textnorm.Normalize(submitted)
	bestAnswer, bestScore := "", -1.0
	for _, a := range q.AcceptedAnswers {
		if s := Similarity(sub, textnorm.Normalize(a)); s > bestScore {
			bestAnswer, bestScore = a, s
		}
	}
	return bestAnswer
}

// arbitrate asks the arbiter model. Every failure counts as not correct.
func (m *Matcher) arbitrate(ctx context.Context, room string, q *questiongen.Question, submitted string) bool {
	cfg := m.config.Arbiter
	if !cfg.Enabled || m.arbiter == nil {
		return false
	}
	if !m.allow(room) {
		m.logger.Info("arbiter call rate limited", "room", room)
		return false
	}

	ctx = llm.WithRoom(llm.WithPurpose(ctx, PurposeArbiter), room)
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req := llm.Prompt(arbiterSystemPrompt(cfg.CorrectToken), arbiterPrompt(q, submitted))
	req.MaxTokens = 16

	c, err := m.arbiter.Complete(ctx, req)
	if err != nil {
		m.logger.Warn("arbiter call failed", "room", room, "err", err)
		return false
	}

	verdict := containsToken(c.Text, cfg.CorrectToken)
	m.logger.Info("arbiter verdict", "room", room, "reply", strings.TrimSpace(c.Text), "correct", verdict)
	return verdict
}

func (m *Matcher) allow(room string) bool {
	cfg := m.config.Arbiter
	if cfg.Interval <= 0 {
		return true
	}

	m.mu.Lock()
	lim, ok := m.limiters[room]
	if !ok {
		lim = rate.NewLimiter(rate.Every(cfg.Interval), max(cfg.Burst, 1))
		m.limiters[room] = lim
	}
	m.mu.Unlock()

	return lim.Allow()
}

// Forget drops per-room limiter state.
func (m *Matcher) Forget(room string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.limiters, room)
}

func arbiterSystemPrompt(token string) string {
	return fmt.Sprintf(`You are the final judge of a trivia game ruling on a disputed answer.
Reply with exactly one word: %s if the player's answer should count, WRONG otherwise.
Accept synonyms, aliases, translations and other correct ways of saying an accepted answer.
Do not explain.`, token)
}

func arbiterPrompt(q *questiongen.Question, submitted string) string {
	return fmt.Sprintf("Question: %s\nAccepted answers: %s\nPlayer's answer: %s\nYour ruling:",
		q.Description, strings.Join(q.AcceptedAnswers, "; "), submitted)
}

// containsToken reports whether token appears in reply as a whole word,
// ignoring case. "INCORRECT" does not contain "CORRECT". Tokens outside
// ASCII (scripts written without spaces) match as substrings.
func containsToken(reply, token string) bool {
	if token == "" {
		return false
	}
	if strings.IndexFunc(token, func(r rune) bool { return r > unicode.MaxASCII }) >= 0 {
		return strings.Contains(reply, token)
	}
	words := strings.FieldsFunc(reply, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if strings.EqualFold(w, token) {
			return true
		}
	}
	return false
}
