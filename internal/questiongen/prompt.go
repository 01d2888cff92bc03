package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a well-read quiz master writing questions for a group chat trivia game.

Rules:
- Write exactly one question on the given topic at the given difficulty.
- Approach the topic from the given style angle so the question feels fresh.
- The description must be short and must end with a clear question, e.g. "Who was this person?" or "What is this phenomenon called?".
- List every answer that should count as correct in accepted_answers: the canonical name, common alternative names, spellings and abbreviations.
- Give up to three hints, from vague to nearly decisive. None of them may contain an accepted answer.
- Reply with a single JSON object and nothing else.`

const jsonFormat = `{
  "description": "short description ending with a question",
  "accepted_answers": ["answer", "alternative name"],
  "difficulty": "%s",
  "hints": ["first vague hint", "more obvious hint", "decisive hint"]
}`

// buildPrimaryPrompt constructs the first-draft user message.
func buildPrimaryPrompt(topic string, difficulty Difficulty, seed string, avoid []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", topic)
	fmt.Fprintf(&b, "Difficulty: %s\n", difficulty)
	fmt.Fprintf(&b, "Style angle: %s\n", seed)
	if len(avoid) > 0 {
		fmt.Fprintf(&b, "Avoid questions whose answer is about: %s\n", strings.Join(avoid, ", "))
	}

	b.WriteString("\nRespond in this JSON format:\n")
	fmt.Fprintf(&b, jsonFormat, difficulty)
	return b.String()
}

// buildCorrectivePrompt asks for a replacement after the first draft
// repeated answers already used for the topic.
func buildCorrectivePrompt(topic string, difficulty Difficulty, conflicts []string) string {
	repeated := strings.Join(conflicts, ", ")

	var b strings.Builder
	fmt.Fprintf(&b, "You were asked for a %s question about %s, but its answer (%s) has already been used in this game.\n\n",
		difficulty, topic, repeated)
	fmt.Fprintf(&b, "Write a completely new %s question about %s whose person, event or concept has nothing to do with: %s.\n",
		difficulty, topic, repeated)

	b.WriteString("\nRespond in exactly the same JSON format:\n")
	fmt.Fprintf(&b, jsonFormat, difficulty)
	return b.String()
}
