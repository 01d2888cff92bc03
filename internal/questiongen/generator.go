// Package questiongen produces non-repeating trivia questions with a
// language model.
package questiongen

import "context"

// Generator produces trivia questions.
type Generator interface {
	// Generate produces a single question for the given input. On success
	// the question's answer set has already been recorded in the history.
	Generate(ctx context.Context, input GenerateInput) (*Question, error)
}
