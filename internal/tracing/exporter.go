package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// FileExporter appends finished spans to a JSONL file, one span per line.
type FileExporter struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

var _ sdktrace.SpanExporter = (*FileExporter)(nil)

// NewFileExporter opens path for append, creating it and its parent
// directories if needed.
func NewFileExporter(path string) (*FileExporter, error) {
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	f, err := os.OpenFile(clean, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 -- path is cleaned above
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return &FileExporter{file: f, enc: json.NewEncoder(f)}, nil
}

// ExportSpans writes each span as a SpanRecord.
func (e *FileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.file == nil {
		return fmt.Errorf("exporter is shut down")
	}
	for _, s := range spans {
		if err := e.enc.Encode(toRecord(s)); err != nil {
			return fmt.Errorf("encode span: %w", err)
		}
	}
	return nil
}

// Shutdown closes the file. Later exports fail.
func (e *FileExporter) Shutdown(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.file == nil {
		return nil
	}
	err := e.file.Close()
	e.file = nil
	e.enc = nil
	return err
}

// SpanRecord is the on-disk shape of a span.
type SpanRecord struct {
	TraceID    string         `json:"trace_id"`
	SpanID     string         `json:"span_id"`
	ParentID   string         `json:"parent_span_id,omitempty"`
	Name       string         `json:"name"`
	Start      string         `json:"start_time"`
	DurationMs float64        `json:"duration_ms"`
	Status     string         `json:"status"`
	StatusMsg  string         `json:"status_message,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Events     []EventRecord  `json:"events,omitempty"`
}

// EventRecord is the on-disk shape of a span event.
type EventRecord struct {
	Name       string         `json:"name"`
	Time       string         `json:"time"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func toRecord(s sdktrace.ReadOnlySpan) SpanRecord {
	rec := SpanRecord{
		TraceID:    s.SpanContext().TraceID().String(),
		SpanID:     s.SpanContext().SpanID().String(),
		Name:       s.Name(),
		Start:      s.StartTime().Format(time.RFC3339Nano),
		DurationMs: float64(s.EndTime().Sub(s.StartTime()).Microseconds()) / 1000.0,
		Status:     statusString(s.Status().Code),
		StatusMsg:  s.Status().Description,
	}
	if s.Parent().IsValid() {
		rec.ParentID = s.Parent().SpanID().String()
	}
	if attrs := s.Attributes(); len(attrs) > 0 {
		rec.Attributes = make(map[string]any, len(attrs))
		for _, kv := range attrs {
			rec.Attributes[string(kv.Key)] = kv.Value.AsInterface()
		}
	}
	for _, ev := range s.Events() {
		er := EventRecord{Name: ev.Name, Time: ev.Time.Format(time.RFC3339Nano)}
		if len(ev.Attributes) > 0 {
			er.Attributes = make(map[string]any, len(ev.Attributes))
			for _, kv := range ev.Attributes {
				er.Attributes[string(kv.Key)] = kv.Value.AsInterface()
			}
		}
		rec.Events = append(rec.Events, er)
	}
	return rec
}

func statusString(c codes.Code) string {
	switch c {
	case codes.Ok:
		return "OK"
	case codes.Error:
		return "ERROR"
	default:
		return "UNSET"
	}
}
