package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func traceAttrs(kv ...attribute.KeyValue) trace.EventOption {
	return trace.WithAttributes(kv...)
}
