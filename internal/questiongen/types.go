package questiongen

import (
	"fmt"
	"strings"
)

// Difficulty is the requested or declared difficulty of a question.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

// AllDifficulties returns the difficulties from easiest to hardest.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Normal, Hard}
}

// ParseDifficulty accepts a difficulty name in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Easy, Normal, Hard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	_, err := ParseDifficulty(string(d))
	return err == nil
}

// DisplayName returns a human-readable label for the difficulty.
func (d Difficulty) DisplayName() string {
	switch d {
	case Easy:
		return "Easy"
	case Normal:
		return "Normal"
	case Hard:
		return "Hard"
	default:
		return string(d)
	}
}

// Question is a generated trivia question. It is never modified after
// Generate returns it.
type Question struct {
	// Description is the question text; it ends with a question.
	Description string

	// AcceptedAnswers lists every answer that counts as correct, in the
	// order the model gave them. Never empty.
	AcceptedAnswers []string

	// Difficulty is the difficulty the model declared, or the requested
	// one when the declaration was unusable.
	Difficulty Difficulty

	// Hints are revealed one at a time, in order. May be empty.
	Hints []string

	// Topic is the subject the question was generated for.
	Topic string

	// Regenerated is set when the first draft repeated an earlier answer
	// and this is the corrective draft.
	Regenerated bool
}

// GenerateInput holds the context for one generation.
type GenerateInput struct {
	// Topic to generate for. Empty picks one from the configured topics.
	Topic string

	// Difficulty to request. Empty draws one at random.
	Difficulty Difficulty

	// Room labels the model calls made for this generation.
	Room string

	// OnDuplicate, when set, is called with the conflicting answers before
	// the corrective draft is requested.
	OnDuplicate func(topic string, conflicts []string)
}
