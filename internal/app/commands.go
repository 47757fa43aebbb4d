package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/sigtrack/internal/antidelay"
	"github.com/zjrosen/sigtrack/internal/config"
	"github.com/zjrosen/sigtrack/internal/signals"
)

// savedMsg reports a plain save (no antidelay).
type savedMsg struct {
	sig *signals.SavedSignal
	err error
}

// delayedSavedMsg reports the commit started from the antidelay prompt.
type delayedSavedMsg struct {
	err error
}

// longPressMsg fires when Save TS has been held for the threshold.
// gen identifies the press it was scheduled for.
type longPressMsg struct {
	gen uint64
}

// flashDoneMsg ends the pressed acknowledgment it was scheduled for.
type flashDoneMsg struct {
	id uint64
}

// intentSentMsg reports a broadcast attempt.
type intentSentMsg struct {
	action config.BroadcastAction
	ok     bool
}

// delayPersistedMsg reports writing the last used antidelay to the config.
type delayPersistedMsg struct {
	seconds int
	err     error
}

// countLoadedMsg carries the number of saved signals at startup.
type countLoadedMsg struct {
	count int
	err   error
}

func saveCmd(ctx context.Context, store Store, text string) tea.Cmd {
	return func() tea.Msg {
		sig, err := store.Save(ctx, text, nil)
		return savedMsg{sig: sig, err: err}
	}
}

func delayedSaveCmd(ctx context.Context, coord *antidelay.Coordinator, req antidelay.Request) tea.Cmd {
	return func() tea.Msg {
		return delayedSavedMsg{err: coord.Commit(ctx, req)}
	}
}

func longPressCmd(d time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return longPressMsg{gen: gen} })
}

func flashCmd(d time.Duration, id uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return flashDoneMsg{id: id} })
}

func sendIntentCmd(ctx context.Context, d Dispatcher, action config.BroadcastAction) tea.Cmd {
	return func() tea.Msg {
		return intentSentMsg{action: action, ok: d.SendIntent(ctx, action.Action)}
	}
}

func persistDelayCmd(path string, seconds int) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		return delayPersistedMsg{seconds: seconds, err: config.SaveAntidelay(path, seconds)}
	}
}

func countCmd(ctx context.Context, store Store) tea.Cmd {
	return func() tea.Msg {
		n, err := store.Count(ctx)
		return countLoadedMsg{count: n, err: err}
	}
}
