package antidelay

import (
	"time"

	"github.com/zjrosen/sigtrack/internal/log"
)

// DefaultLongPress is how long the Save TS control must be held.
const DefaultLongPress = 500 * time.Millisecond

// Clock provides the current time. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// RealClock returns the wall clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time { return time.Now() }

// GestureState is the press-and-hold timer's state.
type GestureState int

const (
	GestureDisarmed GestureState = iota
	GestureArmed
	GestureFired
)

func (s GestureState) String() string {
	switch s {
	case GestureDisarmed:
		return "disarmed"
	case GestureArmed:
		return "armed"
	case GestureFired:
		return "fired"
	default:
		return "unknown"
	}
}

// Gesture turns a press/release pair into a long-press that opens the
// coordinator's delay prompt. At most one timer is armed at a time; each
// press gets a new generation so expiries from older presses are ignored.
//
// The caller owns the actual timer (a tea.Tick in the app): Press returns
// the generation to schedule and Expire is called when it elapses. Release
// also consults the clock, so a missed or late expiry still counts.
type Gesture struct {
	coord      *Coordinator
	clock      Clock
	threshold  time.Duration
	state      GestureState
	generation uint64
	pressedAt  time.Time
}

// NewGesture binds a gesture to coord. A non-positive threshold uses
// DefaultLongPress; a nil clock uses RealClock.
func NewGesture(coord *Coordinator, threshold time.Duration, clock Clock) *Gesture {
	if threshold <= 0 {
		threshold = DefaultLongPress
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Gesture{coord: coord, clock: clock, threshold: threshold}
}

// Threshold returns the hold duration that counts as a long press.
func (g *Gesture) Threshold() time.Duration { return g.threshold }

// SetThreshold changes the hold duration for later presses.
func (g *Gesture) SetThreshold(d time.Duration) {
	if d > 0 {
		g.threshold = d
	}
}

// State returns the timer state.
func (g *Gesture) State() GestureState { return g.state }

// Generation returns the id of the most recent press.
func (g *Gesture) Generation() uint64 { return g.generation }

// Press arms the timer. It is refused while another press is active or the
// coordinator is not idle, which keeps the control disabled mid-flow.
func (g *Gesture) Press() (uint64, bool) {
	if g.state != GestureDisarmed || g.coord.State() != StateIdle {
		return 0, false
	}
	g.generation++
	g.state = GestureArmed
	g.pressedAt = g.clock.Now()
	return g.generation, true
}

// Expire fires the armed timer for generation gen. Stale generations and
// disarmed gestures are ignored.
func (g *Gesture) Expire(gen uint64) bool {
	if g.state != GestureArmed || gen != g.generation {
		return false
	}
	g.state = GestureFired
	log.Debug(log.CatAntidelay, "Long press threshold reached", "gen", gen)
	return true
}

// Release ends the press. A long press opens the delay prompt with text,
// the live buffer at release time. A short press is a non-event.
func (g *Gesture) Release(text string) bool {
	switch g.state {
	case GestureDisarmed:
		return false
	case GestureArmed:
		if g.clock.Now().Sub(g.pressedAt) < g.threshold {
			g.state = GestureDisarmed
			log.Debug(log.CatAntidelay, "Short press ignored", "gen", g.generation)
			return false
		}
	}
	g.state = GestureDisarmed
	return g.coord.Begin(text)
}

// Abort disarms the gesture without a transition, as when the pointer
// leaves the control mid-press.
func (g *Gesture) Abort() {
	g.state = GestureDisarmed
}
