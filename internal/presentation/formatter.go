package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"
)

const timeLayout = "2006-01-02 15:04:05"

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	width  int
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
		width:  80,
	}
}

// WithWidth sets the line width used by the table formats.
func (f *Formatter) WithWidth(width int) *Formatter {
	if width > 0 {
		f.width = width
	}
	return f
}

// FormatJSON writes v as indented JSON
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatSignalTable writes one line per signal: timestamp, antidelay,
// guid and the text, cut to fit the width.
func (f *Formatter) FormatSignalTable(list []SignalDTO) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(f.writer, "No saved signals.")
		return err
	}
	for _, s := range list {
		delay := "-"
		if s.Antidelay != nil {
			delay = fmt.Sprintf("-%ds", *s.Antidelay)
		}
		prefix := fmt.Sprintf("%s  %s  %s  ",
			s.Timestamp.Local().Format(timeLayout),
			padding.String(delay, 6),
			shortGUID(s.GUID),
		)
		if _, err := fmt.Fprintln(f.writer, prefix+f.fit(oneLine(s.Text), len(prefix))); err != nil {
			return err
		}
	}
	return nil
}

// FormatSignal writes a single signal with its full text.
func (f *Formatter) FormatSignal(s SignalDTO) error {
	var b strings.Builder
	fmt.Fprintf(&b, "GUID:       %s\n", s.GUID)
	fmt.Fprintf(&b, "Timestamp:  %s\n", s.Timestamp.Local().Format(timeLayout))
	fmt.Fprintf(&b, "Created:    %s\n", s.CreatedAt.Local().Format(timeLayout))
	if s.Antidelay != nil {
		fmt.Fprintf(&b, "Antidelay:  %ds\n", *s.Antidelay)
	}
	b.WriteString("\n")
	b.WriteString(s.Text)
	b.WriteString("\n")
	_, err := io.WriteString(f.writer, b.String())
	return err
}

// FormatIntentTable writes one line per intent attempt.
func (f *Formatter) FormatIntentTable(list []IntentDTO) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(f.writer, "No intents sent.")
		return err
	}
	for _, a := range list {
		status := "ok"
		if !a.Success {
			status = "failed"
		}
		prefix := fmt.Sprintf("%s  %s  %s  ",
			a.At.Local().Format(timeLayout),
			padding.String(status, 6),
			padding.String(a.Path, 8),
		)
		if _, err := fmt.Fprintln(f.writer, prefix+f.fit(a.Action, len(prefix))); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) fit(s string, used int) string {
	room := f.width - used
	if room < 8 {
		room = 8
	}
	return truncate.StringWithTail(s, uint(room), "…")
}

func shortGUID(guid string) string {
	if len(guid) > 8 {
		return guid[:8]
	}
	return padding.String(guid, 8)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
