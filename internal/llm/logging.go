package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/trivia/internal/store"
)

// LoggingProvider records every call in the LLM event log.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	logger    *slog.Logger
}

// WithLogging wraps a Provider with event logging.
func WithLogging(p Provider, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo, logger: slog.Default()}
}

func (l *LoggingProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	start := time.Now()
	labels := LabelsFrom(ctx)

	c, err := l.inner.Complete(ctx, req)

	data := store.LLMRequestEventData{
		Model:       l.inner.ModelID(),
		Purpose:     labels.Purpose,
		Room:        labels.Room,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if c != nil {
		data.InputTokens = c.Usage.InputTokens
		data.OutputTokens = c.Usage.OutputTokens
		data.ResponseBody = c.Text
		if c.Model != "" {
			data.Model = c.Model
		}
		if c.Truncated() {
			l.logger.Warn("llm completion truncated", "purpose", labels.Purpose, "room", labels.Room, "max_tokens", req.MaxTokens)
		}
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// Best effort: the caller gets the completion even if the log write fails.
	if logErr := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		l.logger.Warn("failed to record llm request event", "purpose", labels.Purpose, "err", logErr)
	}
	return c, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// transcript renders a request for `trivia llm view`.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "[sampling] temperature=%.2f top_p=%.2f max_tokens=%d", req.Temperature, req.TopP, req.MaxTokens)
	return b.String()
}
