package llm

import "context"

type labelsKey struct{}

// Labels say what a model call is for. Decorators record them with the
// call's event, span and log lines.
type Labels struct {
	Purpose string
	Room    string
}

// WithPurpose labels calls made with ctx, e.g. "question-gen".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	l, _ := ctx.Value(labelsKey{}).(Labels)
	l.Purpose = purpose
	return context.WithValue(ctx, labelsKey{}, l)
}

// WithRoom records the chat room a call is made for.
func WithRoom(ctx context.Context, room string) context.Context {
	l, _ := ctx.Value(labelsKey{}).(Labels)
	l.Room = room
	return context.WithValue(ctx, labelsKey{}, l)
}

// LabelsFrom returns the labels attached to ctx. An unset purpose reads
// as "unknown".
func LabelsFrom(ctx context.Context) Labels {
	l, _ := ctx.Value(labelsKey{}).(Labels)
	if l.Purpose == "" {
		l.Purpose = "unknown"
	}
	return l
}

// PurposeFrom returns the purpose label of ctx.
func PurposeFrom(ctx context.Context) string {
	return LabelsFrom(ctx).Purpose
}
