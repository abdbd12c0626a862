package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lexaid-server"

// GetTracer returns the tracer for the lexaid service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartConversationSpan starts a span for a conversation operation.
func StartConversationSpan(ctx context.Context, operation, conversationID string) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "conversation."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
		),
	)
	return ctx, span
}

// StartCompletionSpan starts a span for a chat completion round-trip.
func StartCompletionSpan(ctx context.Context, model string, turns int) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "completion.create",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("completion.model", model),
			attribute.Int("completion.turns", turns),
		),
	)
	return ctx, span
}

// StartSimplifySpan starts a span for a document simplification run.
func StartSimplifySpan(ctx context.Context, documentID string, sizeBytes int64) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "document.simplify",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("document.id", documentID),
			attribute.Int64("document.size_bytes", sizeBytes),
		),
	)
	return ctx, span
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
