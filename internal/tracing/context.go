package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceID returns the trace id of the span in ctx, or "" when there is no
// recording span. Used to correlate log lines with exported spans.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
