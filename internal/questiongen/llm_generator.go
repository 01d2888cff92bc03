package questiongen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/abhisek/trivia/internal/history"
	"github.com/abhisek/trivia/internal/llm"
)

// Purpose labels recorded with every model call of the generator.
const (
	PurposeGenerate   = "question-gen"
	PurposeCorrective = "question-gen-corrective"
)

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	history  *history.Store
	topics   *TopicPicker
	config   Config
	logger   *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option customizes an LLMGenerator.
type Option func(*LLMGenerator)

// WithRand makes topic, difficulty, seed and avoid-list draws reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(g *LLMGenerator) { g.rng = rng }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *LLMGenerator) { g.logger = l }
}

// New creates a new LLMGenerator with the given provider, history and config.
func New(provider llm.Provider, hist *history.Store, cfg Config, opts ...Option) *LLMGenerator {
	g := &LLMGenerator{
		provider: provider,
		history:  hist,
		config:   cfg,
		logger:   slog.Default(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	// The picker shares the generator's source; draws are serialized by rngMu.
	g.topics = NewTopicPicker(cfg.Topics, cfg.TopicHistory, rand.New(lockedSource{g}))
	return g
}

// Topics exposes the topic picker.
func (g *LLMGenerator) Topics() *TopicPicker {
	return g.topics
}

// Generate produces a single question for the given input.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*Question, error) {
	topic := input.Topic
	if topic == "" {
		var err error
		if topic, err = g.topics.Pick(); err != nil {
			return nil, err
		}
	}

	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = draw(g, DrawDifficulty)
	}

	seed := "classic"
	if len(g.config.StyleSeeds) > 0 {
		seed = g.config.StyleSeeds[draw(g, func(r *rand.Rand) int { return r.IntN(len(g.config.StyleSeeds)) })]
	}
	avoid := g.drawAvoid(topic)

	g.logger.Info("generating question", "room", input.Room, "topic", topic, "difficulty", difficulty, "seed", seed, "avoid", len(avoid))
	ctx = llm.WithRoom(ctx, input.Room)

	text, err := g.complete(llm.WithPurpose(ctx, PurposeGenerate),
		buildPrimaryPrompt(topic, difficulty, seed, avoid), g.config.Temperature)
	if err != nil {
		return nil, err
	}

	q, err := parseQuestion(text, difficulty)
	if err != nil {
		g.logger.Warn("unusable question draft", "topic", topic, "err", err)
		return nil, err
	}

	if conflicts := g.history.Conflicts(topic, q.AcceptedAnswers); len(conflicts) > 0 {
		g.logger.Info("question repeats earlier answers, regenerating", "topic", topic, "conflicts", conflicts)
		if input.OnDuplicate != nil {
			input.OnDuplicate(topic, conflicts)
		}

		temp := min(g.config.Temperature+correctiveTemperatureStep, maxTemperature)
		text, err = g.complete(llm.WithPurpose(ctx, PurposeCorrective),
			buildCorrectivePrompt(topic, difficulty, conflicts), temp)
		if err != nil {
			return nil, err
		}

		// The corrective draft is taken as is; it is not checked for repeats.
		q, err = parseQuestion(text, difficulty)
		if err != nil {
			return nil, fmt.Errorf("%w: corrective draft: %v", ErrGenerationFailed, err)
		}
		q.Regenerated = true
	}

	q.Topic = topic
	if err := g.history.Append(ctx, topic, q.AcceptedAnswers); err != nil {
		g.logger.Warn("failed to record answer history", "topic", topic, "err", err)
	}
	return q, nil
}

// complete performs one bounded model call and maps its failure modes.
func (g *LLMGenerator) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	req := llm.Prompt(systemPrompt, prompt)
	req.MaxTokens = g.config.MaxTokens
	req.Temperature = temperature
	req.TopP = g.config.TopP

	c, err := g.provider.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if c.Truncated() {
		g.logger.Warn("question draft hit the token limit", "max_tokens", req.MaxTokens)
	}
	return c.Text, nil
}

func (g *LLMGenerator) drawAvoid(topic string) []string {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return g.history.Sample(topic, g.config.AvoidSample, g.rng)
}

// draw runs fn with exclusive use of the generator's random source.
func draw[T any](g *LLMGenerator, fn func(*rand.Rand) T) T {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return fn(g.rng)
}

// lockedSource adapts the generator's rand.Rand to a rand.Source that can
// be shared with the topic picker.
type lockedSource struct{ g *LLMGenerator }

func (s lockedSource) Uint64() uint64 {
	s.g.rngMu.Lock()
	defer s.g.rngMu.Unlock()
	return s.g.rng.Uint64()
}
