package game

// MessageKind identifies an unsolicited room message.
type MessageKind string

const (
	// KindDuplicate is sent while a start is underway and the first draft
	// repeated an earlier answer.
	KindDuplicate MessageKind = "duplicate"

	// KindTimeout is sent when a round expires unanswered.
	KindTimeout MessageKind = "timeout"
)

// Message is pushed to a room outside of any request.
type Message struct {
	Kind MessageKind
	Text string

	// Answers carries the revealed answers for KindTimeout.
	Answers []string
}

// Notifier delivers room messages. Announce is called from timer
// goroutines and must not block for long.
type Notifier interface {
	Announce(room string, msg Message)
}

// NopNotifier drops every message.
type NopNotifier struct{}

func (NopNotifier) Announce(string, Message) {}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(room string, msg Message)

func (f NotifierFunc) Announce(room string, msg Message) { f(room, msg) }
