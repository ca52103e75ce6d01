package logger

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

func AttrsFromCtx(ctx context.Context) []slog.Attr {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}

	return []slog.Attr{
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	}
}

// FromCtx returns l enriched with the trace ids carried by ctx, if any.
func FromCtx(ctx context.Context, l *slog.Logger) *slog.Logger {
	attrs := AttrsFromCtx(ctx)
	if len(attrs) == 0 {
		return l
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return l.With(args...)
}
