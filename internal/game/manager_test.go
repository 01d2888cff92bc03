package game

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/trivia/internal/economy"
	"github.com/abhisek/trivia/internal/ledger"
	"github.com/abhisek/trivia/internal/matcher"
	"github.com/abhisek/trivia/internal/questiongen"
	"github.com/abhisek/trivia/internal/reward"
	"github.com/abhisek/trivia/internal/stats"
	"github.com/abhisek/trivia/internal/store"
)

func photosynthesis() *questiongen.Question {
	return &questiongen.Question{
		Description:     "Which process lets plants turn light into chemical energy?",
		AcceptedAnswers: []string{"Photosynthesis"},
		Difficulty:      questiongen.Normal,
		Hints:           []string{"It happens in chloroplasts.", "Starts with 'photo'."},
		Topic:           "Biology",
	}
}

type fakeGenerator struct {
	mu        sync.Mutex
	calls     int
	inputs    []questiongen.GenerateInput
	err       error
	duplicate []string

	entered chan struct{}
	block   chan struct{}
}

func (g *fakeGenerator) Generate(_ context.Context, in questiongen.GenerateInput) (*questiongen.Question, error) {
	g.mu.Lock()
	g.calls++
	g.inputs = append(g.inputs, in)
	err, dup, entered, block := g.err, g.duplicate, g.entered, g.block
	g.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if len(dup) > 0 && in.OnDuplicate != nil {
		in.OnDuplicate("Biology", dup)
	}
	q := photosynthesis()
	if in.Difficulty != "" {
		q.Difficulty = in.Difficulty
	}
	return q, nil
}

func (g *fakeGenerator) setErr(err error) {
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()
}

type recorder struct {
	mu   sync.Mutex
	msgs []Message
	ch   chan Message
}

func newRecorder() *recorder { return &recorder{ch: make(chan Message, 128)} }

func (r *recorder) Announce(_ string, msg Message) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	select {
	case r.ch <- msg:
	default:
	}
}

func (r *recorder) count(kind MessageKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

var testDay = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	manager *Manager
	gen     *fakeGenerator
	notes   *recorder
	stats   *stats.Store
	ledger  *ledger.Ledger
	wallet  *economy.DocumentWallet
}

func newFixture(t *testing.T, timeout time.Duration) *fixture {
	t.Helper()
	return newFixtureWithWallet(t, timeout, func(w *economy.DocumentWallet) economy.Wallet { return w })
}

// newFixtureWithWallet lets a test replace the document wallet the rewards
// are paid into. pick may return nil to run without an economy.
func newFixtureWithWallet(t *testing.T, timeout time.Duration, pick func(*economy.DocumentWallet) economy.Wallet) *fixture {
	t.Helper()
	ctx := context.Background()
	ds := store.NewMemoryDocuments()

	st, err := stats.Load(ctx, ds)
	require.NoError(t, err)
	l, err := ledger.Load(ctx, ds)
	require.NoError(t, err)
	w, err := economy.LoadDocumentWallet(ctx, ds)
	require.NoError(t, err)

	f := &fixture{gen: &fakeGenerator{}, notes: newRecorder(), stats: st, ledger: l, wallet: w}
	cfg := DefaultConfig()
	cfg.RoundTimeout = timeout
	f.manager = New(cfg, f.gen,
		matcher.New(matcher.DefaultConfig(), nil, nil),
		reward.New(reward.DefaultConfig(), l, pick(w), nil),
		st,
		WithNotifier(f.notes),
		WithClock(func() time.Time { return testDay }),
	)
	t.Cleanup(func() { f.manager.Shutdown() })
	return f
}

func TestStart_Announces(t *testing.T) {
	f := newFixture(t, time.Hour)

	a, err := f.manager.Start(context.Background(), "room", "")
	require.NoError(t, err)
	assert.NotEmpty(t, a.SessionID)
	assert.Equal(t, "Biology", a.Topic)
	assert.Equal(t, questiongen.Normal, a.Difficulty)
	assert.Equal(t, 2, a.HintCount)
	assert.Contains(t, a.Text(), "Which process lets plants")
	assert.Contains(t, a.Text(), "3600 seconds")

	snap, ok := f.manager.Active("room")
	require.True(t, ok)
	assert.Equal(t, a.SessionID, snap.ID)
	assert.Equal(t, testDay.Add(time.Hour), snap.Deadline)
}

func TestStart_AlreadyActive(t *testing.T) {
	f := newFixture(t, time.Hour)
	_, err := f.manager.Start(context.Background(), "room", "")
	require.NoError(t, err)

	_, err = f.manager.Start(context.Background(), "room", "hard")
	assert.ErrorIs(t, err, ErrAlreadyActive)
	assert.Equal(t, 1, f.gen.calls)

	_, err = f.manager.Start(context.Background(), "other", "")
	assert.NoError(t, err, "rooms are independent")
}

func TestStart_ConcurrentStartIsGuarded(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.gen.entered = make(chan struct{}, 1)
	f.gen.block = make(chan struct{})

	done := make(chan error)
	go func() {
		_, err := f.manager.Start(context.Background(), "room", "")
		done <- err
	}()
	<-f.gen.entered

	_, err := f.manager.Start(context.Background(), "room", "")
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	close(f.gen.block)
	require.NoError(t, <-done)

	_, err = f.manager.Start(context.Background(), "room", "")
	assert.ErrorIs(t, err, ErrAlreadyActive)
}

func TestStart_ManyConcurrentStartsOneWins(t *testing.T) {
	f := newFixture(t, time.Hour)

	var wg sync.WaitGroup
	var ok atomic.Int32
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.manager.Start(context.Background(), "room", ""); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok.Load())
	assert.Len(t, f.manager.Rooms(), 1)
	assert.Equal(t, 1, f.gen.calls, "no question is generated only to be thrown away")
}

func TestStart_InvalidDifficultyReleasesGuard(t *testing.T) {
	f := newFixture(t, time.Hour)

	_, err := f.manager.Start(context.Background(), "room", "extreme")
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
	assert.Zero(t, f.gen.calls)
	assert.Empty(t, f.manager.generating)

	a, err := f.manager.Start(context.Background(), "room", "HARD")
	require.NoError(t, err)
	assert.Equal(t, questiongen.Hard, a.Difficulty)
	assert.Equal(t, questiongen.Hard, f.gen.inputs[0].Difficulty)
	assert.Equal(t, "room", f.gen.inputs[0].Room)
}

func TestStart_GenerationErrorLeavesNothing(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.gen.setErr(fmt.Errorf("%w: deadline", questiongen.ErrGenerationTimeout))

	_, err := f.manager.Start(context.Background(), "room", "")
	assert.ErrorIs(t, err, questiongen.ErrGenerationTimeout)
	_, ok := f.manager.Active("room")
	assert.False(t, ok)
	assert.Empty(t, f.manager.generating)
	assert.False(t, f.manager.timers.Pending("room"))

	f.gen.setErr(nil)
	_, err = f.manager.Start(context.Background(), "room", "")
	assert.NoError(t, err)
}

func TestStart_DuplicateNotice(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.gen.duplicate = []string{"photosynthesis"}

	_, err := f.manager.Start(context.Background(), "room", "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.notes.count(KindDuplicate))
}

func TestSubmit_WinPaysReward(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	_, err := f.manager.Start(ctx, "room", "")
	require.NoError(t, err)

	out, err := f.manager.Submit(ctx, "room", "alice", "Alice", "mitosis")
	require.NoError(t, err)
	assert.Equal(t, OutcomeWrong, out.Kind)
	out, err = f.manager.Submit(ctx, "room", "bob", "Bob", "osmosis")
	require.NoError(t, err)
	assert.Equal(t, OutcomeWrong, out.Kind)

	_, err = f.manager.Hint("room")
	require.NoError(t, err)

	out, err = f.manager.Submit(ctx, "room", "carol", "Carol", "photosyntesis")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, out.Kind)
	assert.Equal(t, matcher.StageFuzzy, out.Stage)
	assert.Equal(t, "Photosynthesis", out.MatchedAnswer)
	assert.Equal(t, reward.Result{Reward: 26, Payout: 26, Granted: true}, out.Reward)
	assert.Contains(t, out.Text(), "You earned 26 coins")

	bal, err := f.wallet.Balance(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, 26, bal)
	assert.Equal(t, 26, f.ledger.Awarded("carol", ledger.Day(testDay)))

	out, err = f.manager.Submit(ctx, "room", "dave", "Dave", "photosynthesis")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSession, out.Kind)
	assert.False(t, f.manager.timers.Pending("room"))
}

func TestSubmit_CappedWinStillWins(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	_, err := f.ledger.Reserve(ctx, "alice", 1000, 1000, ledger.Day(testDay))
	require.NoError(t, err)
	_, err = f.manager.Start(ctx, "room", "")
	require.NoError(t, err)

	out, err := f.manager.Submit(ctx, "room", "alice", "Alice", "photosynthesis")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, out.Kind)
	assert.Equal(t, 0, out.Reward.Payout)
	assert.True(t, out.Reward.Capped)
	assert.Contains(t, out.Text(), "reward limit")
}

type refusingWallet struct {
	mu      sync.Mutex
	credits []int
}

func (w *refusingWallet) AddCoins(_ context.Context, _ string, amount int, _ string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.credits = append(w.credits, amount)
	return false, nil
}

func (w *refusingWallet) Balance(context.Context, string) (int, error) { return 0, nil }

func TestSubmit_RefusedCreditIsReported(t *testing.T) {
	w := &refusingWallet{}
	f := newFixtureWithWallet(t, time.Hour, func(*economy.DocumentWallet) economy.Wallet { return w })
	ctx := context.Background()
	_, err := f.manager.Start(ctx, "room", "")
	require.NoError(t, err)

	out, err := f.manager.Submit(ctx, "room", "alice", "Alice", "photosynthesis")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, out.Kind)
	assert.False(t, out.Reward.Granted)
	assert.Positive(t, out.Reward.Payout)
	assert.Equal(t, []int{out.Reward.Payout}, w.credits)

	text := out.Text()
	assert.NotContains(t, text, "You earned")
	assert.Contains(t, text, fmt.Sprintf("Your %d coin reward could not be credited.", out.Reward.Payout))
}

func TestSubmit_WithoutEconomyPaysNothing(t *testing.T) {
	f := newFixtureWithWallet(t, time.Hour, func(*economy.DocumentWallet) economy.Wallet { return nil })
	ctx := context.Background()
	_, err := f.manager.Start(ctx, "room", "")
	require.NoError(t, err)

	out, err := f.manager.Submit(ctx, "room", "alice", "Alice", "photosynthesis")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, out.Kind)
	assert.Positive(t, out.Reward.Reward)
	assert.Equal(t, reward.Result{Reward: out.Reward.Reward}, out.Reward)
	assert.Equal(t, 0, f.ledger.Awarded("alice", ledger.Day(testDay)))
	assert.Contains(t, out.Text(), "No coins this time.")
	assert.NotContains(t, out.Text(), "You earned")
}

func TestSubmit_AttemptsCountedOncePerRound(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	_, err := f.manager.Start(ctx, "room", "")
	require.NoError(t, err)

	for _, guess := range []string{"mitosis", "osmosis", "respiration"} {
		_, err := f.manager.Submit(ctx, "room", "alice", "Alice", guess)
		require.NoError(t, err)
	}
	_, err = f.manager.Submit(ctx, "room", "alice", "Ally", "photosynthesis")
	require.NoError(t, err)

	u, ok := f.stats.Get("alice")
	require.True(t, ok)
	assert.Equal(t, 1, u.Attempts)
	assert.Equal(t, 1, u.Correct)
	assert.Equal(t, "Ally", u.DisplayName)

	_, err = f.manager.Start(ctx, "room", "")
	require.NoError(t, err)
	_, err = f.manager.Submit(ctx, "room", "alice", "Ally", "mitosis")
	require.NoError(t, err)
	u, _ = f.stats.Get("alice")
	assert.Equal(t, 2, u.Attempts)
}

func TestSubmit_Empty(t *testing.T) {
	f := newFixture(t, time.Hour)
	_, err := f.manager.Submit(context.Background(), "room", "alice", "Alice", "   ")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestSubmit_NoSession(t *testing.T) {
	f := newFixture(t, time.Hour)
	out, err := f.manager.Submit(context.Background(), "room", "alice", "Alice", "anything")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSession, out.Kind)
	assert.Empty(t, out.Text())
}

func TestSubmit_ConcurrentCorrectAnswersOneWinner(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	_, err := f.manager.Start(ctx, "room", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.manager.Submit(ctx, "room", fmt.Sprintf("u%d", i), "U", "photosynthesis")
			if err == nil && out.Kind == OutcomeCorrect {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestTimeout_RevealsAndRetires(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	ctx := context.Background()
	_, err := f.manager.Start(ctx, "room", "")
	require.NoError(t, err)

	select {
	case msg := <-f.notes.ch:
		assert.Equal(t, KindTimeout, msg.Kind)
		assert.Equal(t, []string{"Photosynthesis"}, msg.Answers)
		assert.Contains(t, msg.Text, "Time's up")
	case <-time.After(2 * time.Second):
		t.Fatal("round did not time out")
	}

	out, err := f.manager.Submit(ctx, "room", "alice", "Alice", "photosynthesis")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSession, out.Kind)

	_, err = f.manager.Start(ctx, "room", "")
	assert.NoError(t, err)
}

func TestWinAndTimeout_RetireExactlyOnce(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	const rounds = 50
	var wins atomic.Int32
	for i := range rounds {
		room := fmt.Sprintf("room-%d", i)
		_, err := f.manager.Start(ctx, room, "")
		require.NoError(t, err)
		s := f.manager.lookup(room)
		require.NotNil(t, s)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			out, err := f.manager.Submit(ctx, room, "alice", "Alice", "photosynthesis")
			if err == nil && out.Kind == OutcomeCorrect {
				wins.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			f.manager.expire(s)
		}()
		wg.Wait()

		_, ok := f.manager.Active(room)
		assert.False(t, ok)
	}
	assert.Equal(t, rounds, int(wins.Load())+f.notes.count(KindTimeout))
}

func TestEnd_RevealsAndCancelsTimer(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	ctx := context.Background()
	_, err := f.manager.Start(ctx, "room", "")
	require.NoError(t, err)

	r, err := f.manager.End(ctx, "room", "Alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Photosynthesis"}, r.Answers)
	assert.Equal(t, RevealEnded, r.Reason)
	assert.Contains(t, r.Text(), "Alice's request")

	_, err = f.manager.End(ctx, "room", "Alice")
	assert.ErrorIs(t, err, ErrNoActiveSession)

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, f.notes.count(KindTimeout))
}

func TestEnd_DoesNotCancelNewerRound(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	_, err := f.manager.Start(ctx, "room", "")
	require.NoError(t, err)
	old := f.manager.lookup("room")

	_, err = f.manager.End(ctx, "room", "Alice")
	require.NoError(t, err)
	_, err = f.manager.Start(ctx, "room", "")
	require.NoError(t, err)

	assert.False(t, f.manager.timers.Cancel(old.timer))
	assert.True(t, f.manager.timers.Pending("room"))
	f.manager.expire(old)
	_, ok := f.manager.Active("room")
	assert.True(t, ok, "a stale expiry must not retire the newer round")
}

func TestHint(t *testing.T) {
	f := newFixture(t, time.Hour)
	_, err := f.manager.Hint("room")
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, err = f.manager.Start(context.Background(), "room", "")
	require.NoError(t, err)

	h, err := f.manager.Hint("room")
	require.NoError(t, err)
	assert.Equal(t, "Hint 1/2: It happens in chloroplasts.", h.String())
	h, err = f.manager.Hint("room")
	require.NoError(t, err)
	assert.Equal(t, 2, h.Number)

	_, err = f.manager.Hint("room")
	assert.ErrorIs(t, err, ErrNoMoreHints)

	snap, _ := f.manager.Active("room")
	assert.Equal(t, 2, snap.HintsGiven)
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	play := func(winner string) {
		_, err := f.manager.Start(ctx, "room", "")
		require.NoError(t, err)
		_, err = f.manager.Submit(ctx, "room", "carol", "Carol", "mitosis")
		require.NoError(t, err)
		_, err = f.manager.Submit(ctx, "room", winner, winner, "photosynthesis")
		require.NoError(t, err)
	}
	play("bob")
	play("alice")
	play("alice")

	board := f.manager.Leaderboard(0)
	require.Len(t, board, 3)
	assert.Equal(t, "alice", board[0].UserID)
	assert.Equal(t, "carol", board[2].UserID)
	assert.Len(t, f.manager.Leaderboard(1), 1)

	text := LeaderboardText(board)
	assert.Contains(t, text, "#1 alice")
	assert.Contains(t, text, "accuracy: 100.0%")
}

func TestShutdown(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	for _, room := range []string{"a", "b"} {
		_, err := f.manager.Start(ctx, room, "")
		require.NoError(t, err)
	}

	assert.Equal(t, 2, f.manager.Shutdown())
	assert.Empty(t, f.manager.Rooms())
	assert.False(t, f.manager.timers.Pending("a"))
	out, err := f.manager.Submit(ctx, "a", "alice", "Alice", "photosynthesis")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSession, out.Kind)
}
