// Package signals models saved signal snapshots and the service that
// commits, lists and deletes them.
package signals

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptySignal is returned when committing blank text.
	ErrEmptySignal = errors.New("signal text is empty")
	// ErrNegativeAntidelay is returned for an antidelay below zero.
	ErrNegativeAntidelay = errors.New("antidelay must be non-negative")
)

// SavedSignal is one committed snapshot of the signal text.
type SavedSignal struct {
	ID   int64
	GUID string
	Text string
	// Antidelay is nil for a plain save.
	Antidelay *int
	// CreatedAt is when the commit happened.
	CreatedAt time.Time
	// Timestamp is CreatedAt moved back by Antidelay seconds.
	Timestamp time.Time
}

// NewSavedSignal validates text and antidelay and derives Timestamp.
func NewSavedSignal(guid, text string, antidelay *int, createdAt time.Time) (*SavedSignal, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptySignal
	}
	s := &SavedSignal{
		GUID:      guid,
		Text:      text,
		CreatedAt: createdAt,
		Timestamp: createdAt,
	}
	if antidelay != nil {
		if *antidelay < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNegativeAntidelay, *antidelay)
		}
		d := *antidelay
		s.Antidelay = &d
		s.Timestamp = createdAt.Add(-time.Duration(d) * time.Second)
	}
	return s, nil
}

// AntidelaySeconds returns the antidelay, or 0 for a plain save.
func (s SavedSignal) AntidelaySeconds() int {
	if s.Antidelay == nil {
		return 0
	}
	return *s.Antidelay
}

// Label is a one-line description for list views.
func (s SavedSignal) Label() string {
	ts := s.Timestamp.Local().Format("2006-01-02 15:04:05")
	if s.Antidelay == nil {
		return ts
	}
	return fmt.Sprintf("%s (-%ds)", ts, *s.Antidelay)
}

// NotFoundError reports a GUID with no saved signal.
type NotFoundError struct {
	GUID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("signal not found: %s", e.GUID)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
