package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrSignalGUID      = "signal.guid"
	AttrSignalLength    = "signal.length"
	AttrSignalAntidelay = "signal.antidelay_seconds"
	AttrIntentAction    = "intent.action"
	AttrIntentPath      = "intent.path"
	AttrIntentURL       = "intent.url"
	AttrHTTPRoute       = "http.route"
	AttrErrorMessage    = "error.message"
)

// Span names.
const (
	SpanSignalCommit = "signal.commit"
	SpanSignalList   = "signal.list"
	SpanSignalDelete = "signal.delete"
	SpanIntentSend   = "intent.send"
	SpanHTTPPrefix   = "http."
)

// Event names.
const (
	EventSignalStored    = "signal.stored"
	EventPlatformFailed  = "intent.platform_failed"
	EventFallbackStarted = "intent.fallback"
)

// Start opens an internal span on t, which may be nil.
func Start(ctx context.Context, t trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return OrNoop(t).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// Finish sets the span status from err and ends it.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
