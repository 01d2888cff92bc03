package game

import (
	"errors"

	"github.com/abhisek/trivia/internal/questiongen"
)

var (
	ErrAlreadyActive        = errors.New("a round is already active in this room")
	ErrGenerationInProgress = errors.New("a question is already being generated for this room")
	ErrInvalidDifficulty    = errors.New("invalid difficulty")
	ErrNoActiveSession      = errors.New("no active round in this room")
	ErrNoMoreHints          = errors.New("no more hints")
	ErrEmptyAnswer          = errors.New("empty answer")
)

// UserMessage returns the chat text shown for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyActive):
		return "A trivia round is already running here!"
	case errors.Is(err, ErrGenerationInProgress):
		return "Hang on, the previous question is still being written. Try again shortly."
	case errors.Is(err, ErrInvalidDifficulty):
		return "Unknown difficulty. Choose easy, normal or hard."
	case errors.Is(err, ErrNoActiveSession):
		return "There is no trivia round running right now."
	case errors.Is(err, ErrNoMoreHints):
		return "All the hints are out, you're on your own!"
	case errors.Is(err, ErrEmptyAnswer):
		return "Say something to answer."
	case errors.Is(err, questiongen.ErrNoTopics):
		return "No trivia topics have been configured yet."
	case errors.Is(err, questiongen.ErrGenerationTimeout):
		return "Writing the question took too long. Please try again later."
	case errors.Is(err, questiongen.ErrMalformedResponse):
		return "I got distracted while thinking of a question. Try again!"
	case errors.Is(err, questiongen.ErrGenerationFailed):
		return "Couldn't reach the question writer. Please try again later."
	default:
		return "Something went wrong."
	}
}
