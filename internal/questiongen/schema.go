package questiongen

import "github.com/abhisek/trivia/internal/llm"

// QuestionSchema describes the JSON object the model must produce.
// It is used to validate the extracted object, not sent as a structured
// output constraint.
var QuestionSchema = &llm.Schema{
	Name:        "trivia-question",
	Description: "A single trivia question with accepted answers and hints",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"accepted_answers": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": []any{"string", "number"}},
				"minItems": 1,
			},
			"difficulty": map[string]any{
				"type": "string",
			},
			"hints": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"description", "accepted_answers", "difficulty", "hints"},
	},
}
