package game

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/trivia/internal/questiongen"
)

func TestUserMessage(t *testing.T) {
	errs := []error{
		ErrAlreadyActive,
		ErrGenerationInProgress,
		ErrInvalidDifficulty,
		ErrNoActiveSession,
		ErrNoMoreHints,
		ErrEmptyAnswer,
		questiongen.ErrNoTopics,
		questiongen.ErrGenerationTimeout,
		questiongen.ErrGenerationFailed,
		questiongen.ErrMalformedResponse,
	}

	seen := map[string]bool{}
	for _, err := range errs {
		msg := UserMessage(fmt.Errorf("wrapped: %w", err))
		assert.NotEqual(t, "Something went wrong.", msg, err.Error())
		assert.False(t, seen[msg], "duplicate message for %v", err)
		seen[msg] = true
	}

	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "Something went wrong.", UserMessage(errors.New("boom")))
}
