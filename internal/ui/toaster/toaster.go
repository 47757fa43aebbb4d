// Package toaster shows one transient notification at a time.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/sigtrack/internal/ui/overlay"
	"github.com/zjrosen/sigtrack/internal/ui/styles"
)

// Style selects the border color and icon.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

// DefaultDuration is how long a toast stays up when no duration is given.
const DefaultDuration = 3 * time.Second

// DismissMsg hides the toast it was scheduled for. Toasts shown later
// carry a newer ID and ignore it.
type DismissMsg struct {
	ID uint64
}

// Model holds the toaster state.
type Model struct {
	message  string
	style    Style
	visible  bool
	id       uint64
	duration time.Duration
}

// New returns a hidden toaster.
func New(duration time.Duration) Model {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return Model{duration: duration}
}

// Show replaces any current toast and returns the command that will
// dismiss it.
func (m Model) Show(message string, style Style) (Model, tea.Cmd) {
	m.id++
	m.message = message
	m.style = style
	m.visible = true
	id := m.id
	return m, tea.Tick(m.duration, func(time.Time) tea.Msg { return DismissMsg{ID: id} })
}

// Update handles DismissMsg.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.ID == m.id {
		return m.Hide()
	}
	return m
}

// Hide dismisses the toast immediately.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

func (m Model) Visible() bool { return m.visible }
func (m Model) Message() string { return m.message }

// View renders the toast box, or "" when hidden.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	switch m.style {
	case StyleError:
		return style.BorderForeground(styles.ToastBorderErrorColor).Render("✗ " + m.message)
	case StyleInfo:
		return style.BorderForeground(styles.ToastBorderInfoColor).Render("i " + m.message)
	case StyleWarn:
		return style.BorderForeground(styles.ToastBorderWarnColor).Render("! " + m.message)
	default:
		return style.BorderForeground(styles.ToastBorderSuccessColor).Render("✓ " + m.message)
	}
}

// Overlay draws the toast above the bottom edge of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		PadY:     1,
	}, m.View(), bg)
}
