package testutil

import "time"

// signalData holds all data for a signal to be inserted.
type signalData struct {
	guid      string
	text      string
	antidelay *int
	createdAt time.Time
}

// defaultSignal returns a plain save whose text is the GUID.
func defaultSignal(guid string) signalData {
	return signalData{
		guid:      guid,
		text:      guid,
		createdAt: time.Now(),
	}
}

// SignalOption configures a signal during builder setup.
type SignalOption func(*signalData)

// Text sets the signal text.
func Text(text string) SignalOption {
	return func(s *signalData) { s.text = text }
}

// Antidelay makes the signal a delayed save backdated by seconds.
func Antidelay(seconds int) SignalOption {
	return func(s *signalData) { s.antidelay = &seconds }
}

// CreatedAt sets when the commit happened.
func CreatedAt(t time.Time) SignalOption {
	return func(s *signalData) { s.createdAt = t }
}

// intentData holds data for an intent attempt to be recorded.
type intentData struct {
	action  string
	path    string
	success bool
	at      time.Time
}

// IntentOption configures an intent attempt.
type IntentOption func(*intentData)

// Failed marks the attempt as failed on every path.
func Failed() IntentOption {
	return func(i *intentData) {
		i.success = false
		i.path = "none"
	}
}

// ViaFallback marks the attempt as delivered by the fallback URL.
func ViaFallback() IntentOption {
	return func(i *intentData) { i.path = "fallback" }
}

// SentAt sets the attempt time.
func SentAt(t time.Time) IntentOption {
	return func(i *intentData) { i.at = t }
}
