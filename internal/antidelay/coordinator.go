// Package antidelay gates a save behind a delay prompt.
//
// A Coordinator moves through three states. Begin captures the text to save
// and opens the prompt pre-filled with the last used delay. Submit validates
// the entered delay and hands back a Request for the caller to commit;
// Complete reports the commit result and returns to idle. Cancel abandons the
// prompt. A Gesture adds the press-and-hold entry path on top.
package antidelay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zjrosen/sigtrack/internal/log"
)

// State is the coordinator's position in the save flow.
type State int

const (
	StateIdle State = iota
	StateAwaitingDelay
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingDelay:
		return "awaiting_delay"
	case StateCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidDelay is returned by Submit when the input is not a
	// non-negative integer. The coordinator stays in StateAwaitingDelay.
	ErrInvalidDelay = errors.New("antidelay must be a non-negative whole number of seconds")
	// ErrCommitInProgress is returned by Submit while a commit is running.
	ErrCommitInProgress = errors.New("a save is already in progress")
	// ErrNotAwaiting is returned by Submit when no prompt is open.
	ErrNotAwaiting = errors.New("no delayed save is pending")
	// ErrNoCommitter is returned by Commit when the coordinator has nowhere
	// to save to.
	ErrNoCommitter = errors.New("no committer configured")
)

// Committer persists a signal with an optional antidelay in seconds.
type Committer interface {
	Commit(ctx context.Context, text string, delaySeconds *int) error
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(ctx context.Context, text string, delaySeconds *int) error

// Commit calls f.
func (f CommitFunc) Commit(ctx context.Context, text string, delaySeconds *int) error {
	return f(ctx, text, delaySeconds)
}

// Request is a validated delayed save ready to be committed.
type Request struct {
	Text  string
	Delay int
}

// Outcome reports how a commit ended. Committed is false when Err is set.
type Outcome struct {
	Committed bool
	Text      string
	Delay     int
	Err       error
}

// Coordinator owns one delayed-save flow. It is driven from a single event
// loop and holds no locks; illegal events are refused by state.
type Coordinator struct {
	state     State
	pending   string
	input     string
	inputErr  error
	lastDelay int
	inFlight  Request
	committer Committer
}

// NewCoordinator creates an idle coordinator. lastDelay seeds the prompt.
func NewCoordinator(committer Committer, lastDelay int) *Coordinator {
	if lastDelay < 0 {
		lastDelay = 0
	}
	return &Coordinator{committer: committer, lastDelay: lastDelay}
}

// State returns the current state.
func (c *Coordinator) State() State { return c.state }

// Pending returns the text captured by Begin, or "" when idle.
func (c *Coordinator) Pending() string { return c.pending }

// Input returns the current contents of the delay prompt.
func (c *Coordinator) Input() string { return c.input }

// InputError returns the last validation failure for the open prompt.
func (c *Coordinator) InputError() error { return c.inputErr }

// LastDelay returns the delay remembered from the last completed commit.
func (c *Coordinator) LastDelay() int { return c.lastDelay }

// SetLastDelay overrides the remembered delay (e.g. after a config reload).
func (c *Coordinator) SetLastDelay(seconds int) {
	if seconds >= 0 {
		c.lastDelay = seconds
	}
}

// SetInput replaces the prompt contents while awaiting input.
func (c *Coordinator) SetInput(s string) {
	if c.state != StateAwaitingDelay {
		return
	}
	c.input = s
	c.inputErr = nil
}

// Begin opens the delay prompt for text. It returns false unless idle.
func (c *Coordinator) Begin(text string) bool {
	if c.state != StateIdle {
		log.Debug(log.CatAntidelay, "Begin ignored", "state", c.state)
		return false
	}
	c.state = StateAwaitingDelay
	c.pending = text
	c.input = strconv.Itoa(c.lastDelay)
	c.inputErr = nil
	log.Debug(log.CatAntidelay, "Awaiting delay input", "prefill", c.input, "len", len(text))
	return true
}

// Cancel discards the pending request. It returns false unless awaiting input.
func (c *Coordinator) Cancel() bool {
	if c.state != StateAwaitingDelay {
		return false
	}
	c.reset()
	log.Debug(log.CatAntidelay, "Delayed save cancelled")
	return true
}

// Submit validates input and, if valid, moves to StateCommitting.
func (c *Coordinator) Submit(input string) (Request, error) {
	switch c.state {
	case StateCommitting:
		return Request{}, ErrCommitInProgress
	case StateIdle:
		return Request{}, ErrNotAwaiting
	}

	c.input = input
	delay, err := ParseDelay(input)
	if err != nil {
		c.inputErr = err
		log.Warn(log.CatAntidelay, "Rejected delay input", "input", input)
		return Request{}, err
	}

	c.inputErr = nil
	c.state = StateCommitting
	c.inFlight = Request{Text: c.pending, Delay: delay}
	return c.inFlight, nil
}

// Complete finishes the in-flight commit. The coordinator always returns to
// idle and remembers the delay, whether or not err is nil.
func (c *Coordinator) Complete(err error) Outcome {
	if c.state != StateCommitting {
		return Outcome{Err: ErrNotAwaiting}
	}
	req := c.inFlight
	c.lastDelay = req.Delay
	c.reset()

	if err != nil {
		log.ErrorErr(log.CatAntidelay, "Delayed save failed", err, "delay", req.Delay)
		return Outcome{Text: req.Text, Delay: req.Delay, Err: err}
	}
	log.Info(log.CatAntidelay, "Delayed save committed", "delay", req.Delay)
	return Outcome{Committed: true, Text: req.Text, Delay: req.Delay}
}

// Commit hands a request returned by Submit to the Committer. It touches
// no coordinator state, so it may run off the event loop; report the
// result with Complete.
func (c *Coordinator) Commit(ctx context.Context, req Request) error {
	if c.committer == nil {
		return ErrNoCommitter
	}
	delay := req.Delay
	return c.committer.Commit(ctx, req.Text, &delay)
}

// Confirm runs Submit, Commit and Complete in one call. Validation errors
// come back as err; commit failures only in the Outcome.
func (c *Coordinator) Confirm(ctx context.Context, input string) (Outcome, error) {
	req, err := c.Submit(input)
	if err != nil {
		return Outcome{}, err
	}
	return c.Complete(c.Commit(ctx, req)), nil
}

func (c *Coordinator) reset() {
	c.state = StateIdle
	c.pending = ""
	c.input = ""
	c.inputErr = nil
	c.inFlight = Request{}
}

// ParseDelay parses a whole, non-negative number of seconds.
func ParseDelay(input string) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDelay)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelay, input)
	}
	return n, nil
}
