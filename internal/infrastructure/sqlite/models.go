package sqlite

import (
	"time"

	"github.com/zjrosen/sigtrack/internal/signals"
)

// SignalModel is a row of the signals table. Times are Unix milliseconds.
type SignalModel struct {
	ID               int64
	GUID             string
	Text             string
	AntidelaySeconds *int64 // nullable
	CreatedAt        int64
	Timestamp        int64
}

func toSignalModel(s *signals.SavedSignal) *SignalModel {
	m := &SignalModel{
		ID:        s.ID,
		GUID:      s.GUID,
		Text:      s.Text,
		CreatedAt: s.CreatedAt.UnixMilli(),
		Timestamp: s.Timestamp.UnixMilli(),
	}
	if s.Antidelay != nil {
		d := int64(*s.Antidelay)
		m.AntidelaySeconds = &d
	}
	return m
}

func (m *SignalModel) toDomain() signals.SavedSignal {
	s := signals.SavedSignal{
		ID:        m.ID,
		GUID:      m.GUID,
		Text:      m.Text,
		CreatedAt: time.UnixMilli(m.CreatedAt),
		Timestamp: time.UnixMilli(m.Timestamp),
	}
	if m.AntidelaySeconds != nil {
		d := int(*m.AntidelaySeconds)
		s.Antidelay = &d
	}
	return s
}
