package questiongen

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// questionOutput is the raw model object before cleanup.
type questionOutput struct {
	Description     string            `json:"description"`
	AcceptedAnswers []json.RawMessage `json:"accepted_answers"`
	Difficulty      string            `json:"difficulty"`
	Hints           []string          `json:"hints"`
}

// extractObject returns the first balanced {...} object in text. Braces
// inside JSON strings do not count.
func extractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// parseQuestion extracts and validates a question from raw model output.
// fallback is used when the declared difficulty is not a known one.
func parseQuestion(text string, fallback Difficulty) (*Question, error) {
	obj, ok := extractObject(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformedResponse)
	}

	raw := json.RawMessage(obj)
	if err := QuestionSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var out questionOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	description := strings.TrimSpace(out.Description)
	if !endsWithQuestion(description) {
		return nil, fmt.Errorf("%w: description does not end with a question", ErrMalformedResponse)
	}

	answers := lo.Uniq(lo.FilterMap(out.AcceptedAnswers, func(a json.RawMessage, _ int) (string, bool) {
		s := strings.TrimSpace(answerString(a))
		return s, s != ""
	}))
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: no usable accepted answers", ErrMalformedResponse)
	}

	hints := lo.FilterMap(out.Hints, func(h string, _ int) (string, bool) {
		h = strings.TrimSpace(h)
		return h, h != ""
	})

	difficulty, err := ParseDifficulty(out.Difficulty)
	if err != nil {
		difficulty = fallback
	}

	return &Question{
		Description:     description,
		AcceptedAnswers: answers,
		Difficulty:      difficulty,
		Hints:           hints,
	}, nil
}

// answerString renders a string or number answer as text. Models write
// years and counts as bare numbers.
func answerString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

func endsWithQuestion(s string) bool {
	s = strings.TrimRight(s, " \t\n\"'”’)")
	return strings.HasSuffix(s, "?") || strings.HasSuffix(s, "？")
}
