// Package keys contains keybinding definitions.
package keys

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/zjrosen/sigtrack/internal/config"
)

// KeyMap defines the keybindings for the editor screen.
type KeyMap struct {
	// History
	Undo  key.Binding
	Redo  key.Binding
	Clear key.Binding

	// Saving
	Save   key.Binding
	SaveTS key.Binding

	// Intents
	SendIntent key.Binding

	// General
	ToggleHistory key.Binding
	Help          key.Binding
	Escape        key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default keybindings.
// Printable keys are avoided since everything typed goes into the signal text.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Undo: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "redo"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear text"),
		),

		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		SaveTS: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "save with antidelay"),
		),

		SendIntent: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "send intent…"),
		),

		ToggleHistory: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "toggle history"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.SaveTS, k.Undo, k.Redo, k.Help, k.Quit}
}

// FullHelp returns keybindings for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Undo, k.Redo, k.Clear},
		{k.Save, k.SaveTS, k.SendIntent},
		{k.ToggleHistory, k.Help, k.Escape, k.Quit},
	}
}

// ActionBinding ties a configured broadcast action to its key.
type ActionBinding struct {
	Action  config.BroadcastAction
	Binding key.Binding
}

// Broadcasts builds bindings for the configured broadcast actions.
// Actions without a key, or whose key collides with the editor map, get a
// disabled binding and stay reachable by mouse only.
func Broadcasts(km KeyMap, actions []config.BroadcastAction) []ActionBinding {
	taken := make(map[string]bool)
	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				taken[k] = true
			}
		}
	}

	out := make([]ActionBinding, 0, len(actions))
	for _, a := range actions {
		b := key.NewBinding(
			key.WithKeys(a.Key),
			key.WithHelp(a.Key, a.Name),
		)
		if a.Key == "" || taken[a.Key] {
			b.SetEnabled(false)
		} else {
			taken[a.Key] = true
		}
		out = append(out, ActionBinding{Action: a, Binding: b})
	}
	return out
}
