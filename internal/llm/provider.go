// Package llm is the language-model collaborator of the quiz engine: a
// single text completion per call, behind one interface with adapters for
// Anthropic, OpenAI, OpenRouter and Gemini.
package llm

import "context"

// Provider completes prompts.
type Provider interface {
	// Complete sends one prompt and returns the model's text. The call is
	// bounded only by ctx; an expired deadline is returned as
	// context.DeadlineExceeded, possibly wrapped.
	Complete(ctx context.Context, req Request) (*Completion, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Question generation and answer
	// arbitration are single-turn, so this usually holds one user message.
	Messages []Message

	// MaxTokens bounds the completion length.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 2.0. Zero leaves the provider
	// default.
	Temperature float64

	// TopP is the nucleus sampling cutoff. Zero leaves the provider default.
	TopP float64
}

// Prompt builds a single-turn request.
func Prompt(system, user string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason says why the model stopped writing.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
	StopFiltered  StopReason = "filtered"
)

// Completion is the model's answer to a Request.
type Completion struct {
	// Text is the raw completion, every text part joined.
	Text string

	Usage Usage

	// Model is the model that served the request, as reported by the API.
	Model string

	StopReason StopReason
}

// Truncated reports whether the completion hit MaxTokens.
func (c *Completion) Truncated() bool {
	return c != nil && c.StopReason == StopMaxTokens
}

// Usage is the token consumption of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}
