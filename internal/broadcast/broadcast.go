// Package broadcast fires named intents at the device's automation tool.
// Each send makes one platform broadcast and, if that fails, opens one
// fallback URL. Failures are reported as false, never as errors or panics.
package broadcast

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// IncludeStoppedPackages is the intent flag passed to `am broadcast -f`.
const IncludeStoppedPackages = "0x20"

// DefaultScheme is used for derived fallback URLs when none is configured.
const DefaultScheme = "tasker"

// Dispatcher sends an intent action and reports whether any path succeeded.
type Dispatcher interface {
	SendIntent(ctx context.Context, action string) bool
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, action string) bool

func (f DispatcherFunc) SendIntent(ctx context.Context, action string) bool {
	return f(ctx, action)
}

// Path says which route delivered an intent.
type Path string

const (
	PathNone     Path = "none"
	PathPlatform Path = "platform"
	PathFallback Path = "fallback"
)

// Attempt describes one SendIntent call.
type Attempt struct {
	Action  string
	Path    Path
	URL     string
	Success bool
	Err     error
	At      time.Time
}

// Recorder persists attempts. Recording failures are logged and ignored.
type Recorder interface {
	RecordIntent(ctx context.Context, a Attempt) error
}

// FallbackURL derives "<scheme>://<name>" from the last dot-separated
// segment of action, lowercased with separators removed:
// com.tasker.RING_OFF becomes tasker://ringoff.
func FallbackURL(scheme, action string) string {
	action = strings.TrimSpace(action)
	if i := strings.LastIndexByte(action, '.'); i >= 0 {
		action = action[i+1:]
	}
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, action)
	if name == "" {
		return ""
	}
	if scheme == "" {
		scheme = DefaultScheme
	}
	return scheme + "://" + name
}
