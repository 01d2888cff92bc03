package stats

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/trivia/internal/store"
)

func TestRecordGuess_AttemptOncePerRound(t *testing.T) {
	s, err := Load(context.Background(), store.NewMemoryDocuments())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.RecordGuess(ctx, "u1", "Alice", true))
	require.NoError(t, s.RecordGuess(ctx, "u1", "Alice B.", false))

	u, ok := s.Get("u1")
	require.True(t, ok)
	assert.Equal(t, 1, u.Attempts)
	assert.Equal(t, "Alice B.", u.DisplayName)
}

func TestRecordGuess_RenameIsSaved(t *testing.T) {
	ds := store.NewMemoryDocuments()
	ctx := context.Background()
	s, err := Load(ctx, ds)
	require.NoError(t, err)

	require.NoError(t, s.RecordGuess(ctx, "u1", "Alice", true))
	require.NoError(t, s.RecordGuess(ctx, "u1", "Alice B.", false))

	reloaded, err := Load(ctx, ds)
	require.NoError(t, err)
	u, ok := reloaded.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "Alice B.", u.DisplayName)
	assert.Equal(t, 1, u.Attempts)
}

func TestTop_TiesKeepInsertionOrder(t *testing.T) {
	ds := store.NewMemoryDocuments()
	s, err := Load(context.Background(), ds)
	require.NoError(t, err)
	ctx := context.Background()

	for _, id := range []string{"carol", "alice", "bob", "dave"} {
		require.NoError(t, s.RecordGuess(ctx, id, id, true))
	}
	require.NoError(t, s.RecordWin(ctx, "bob", "bob"))
	require.NoError(t, s.RecordWin(ctx, "bob", "bob"))
	require.NoError(t, s.RecordWin(ctx, "alice", "alice"))
	require.NoError(t, s.RecordWin(ctx, "dave", "dave"))

	top := s.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, "bob", top[0].UserID)
	assert.Equal(t, "alice", top[1].UserID)
	assert.Equal(t, "dave", top[2].UserID)
	assert.Equal(t, 3, top[2].Rank)

	// Order survives a reload.
	reloaded, err := Load(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, top, reloaded.Top(3))
	assert.Len(t, reloaded.Top(0), 4)
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, UserStat{}.Accuracy())
	assert.Equal(t, 0.5, UserStat{Correct: 1, Attempts: 2}.Accuracy())
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	s, err := Load(context.Background(), store.NewMemoryDocuments())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RecordGuess(context.Background(), "shared", fmt.Sprintf("name-%d", i), true)
			_ = s.RecordWin(context.Background(), "shared", "")
		}()
	}
	wg.Wait()

	u, _ := s.Get("shared")
	assert.Equal(t, 50, u.Attempts)
	assert.Equal(t, 50, u.Correct)
}

func TestReset(t *testing.T) {
	s, err := Load(context.Background(), store.NewMemoryDocuments())
	require.NoError(t, err)
	require.NoError(t, s.RecordWin(context.Background(), "u1", "Alice"))
	require.NoError(t, s.Reset(context.Background()))
	assert.Empty(t, s.Top(0))
}
