package presentation

import (
	"time"

	"github.com/zjrosen/sigtrack/internal/broadcast"
	"github.com/zjrosen/sigtrack/internal/signals"
)

// SignalDTO represents a saved signal for presentation
type SignalDTO struct {
	GUID      string    `json:"guid"`
	Text      string    `json:"text"`
	Antidelay *int      `json:"antidelay,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Timestamp time.Time `json:"timestamp"`
}

// IntentDTO represents one recorded intent attempt
type IntentDTO struct {
	Action  string    `json:"action"`
	Path    string    `json:"path"`
	URL     string    `json:"url,omitempty"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// FromSignal converts a saved signal to a DTO. Times are reported in UTC.
func FromSignal(s signals.SavedSignal) SignalDTO {
	return SignalDTO{
		GUID:      s.GUID,
		Text:      s.Text,
		Antidelay: s.Antidelay,
		CreatedAt: s.CreatedAt.UTC(),
		Timestamp: s.Timestamp.UTC(),
	}
}

// FromSignals converts a list, always returning a non-nil slice.
func FromSignals(list []signals.SavedSignal) []SignalDTO {
	out := make([]SignalDTO, 0, len(list))
	for _, s := range list {
		out = append(out, FromSignal(s))
	}
	return out
}

// FromAttempts converts intent attempts, always returning a non-nil slice.
func FromAttempts(list []broadcast.Attempt) []IntentDTO {
	out := make([]IntentDTO, 0, len(list))
	for _, a := range list {
		dto := IntentDTO{
			Action:  a.Action,
			Path:    string(a.Path),
			URL:     a.URL,
			Success: a.Success,
			At:      a.At.UTC(),
		}
		if a.Err != nil {
			dto.Error = a.Err.Error()
		}
		out = append(out, dto)
	}
	return out
}
