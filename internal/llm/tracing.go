package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abhisek/trivia/internal/llm"

// TracingProvider wraps every call in a client span. Without a registered
// tracer provider the global no-op tracer is used.
type TracingProvider struct {
	inner  Provider
	system string
	tracer trace.Tracer
}

// WithTracing wraps a Provider with OpenTelemetry spans.
func WithTracing(p Provider, system string) Provider {
	return &TracingProvider{
		inner:  p,
		system: system,
		tracer: otel.Tracer(tracerName),
	}
}

func (t *TracingProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	labels := LabelsFrom(ctx)
	attrs := []attribute.KeyValue{
		attribute.String("llm.system", t.system),
		attribute.String("llm.model", t.inner.ModelID()),
		attribute.String("llm.purpose", labels.Purpose),
		attribute.Float64("llm.temperature", req.Temperature),
		attribute.Float64("llm.top_p", req.TopP),
	}
	if labels.Room != "" {
		attrs = append(attrs, attribute.String("trivia.room", labels.Room))
	}

	ctx, span := t.tracer.Start(ctx, "llm.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	c, err := t.inner.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("llm.input_tokens", c.Usage.InputTokens),
		attribute.Int("llm.output_tokens", c.Usage.OutputTokens),
		attribute.String("llm.stop_reason", string(c.StopReason)),
	)
	return c, nil
}

func (t *TracingProvider) ModelID() string {
	return t.inner.ModelID()
}
