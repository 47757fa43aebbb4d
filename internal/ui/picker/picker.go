// Package picker provides a generic option picker component.
package picker

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/sigtrack/internal/ui/overlay"
	"github.com/zjrosen/sigtrack/internal/ui/styles"
)

// Option represents a picker option with label and value.
type Option struct {
	Label string
	Value string
	Hint  string // Optional right-aligned hint, e.g. a key binding
}

// SelectMsg is sent when the user confirms an option.
type SelectMsg struct {
	Option Option
}

// CancelMsg is sent when the picker is cancelled.
type CancelMsg struct{}

var selectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(styles.OverlayTitleColor)

// Model holds the picker state.
type Model struct {
	title          string
	options        []Option
	selected       int
	boxWidth       int // Width of the picker box itself
	viewportWidth  int // Full viewport width for overlay centering
	viewportHeight int // Full viewport height for overlay centering
}

// New creates a new picker with the given title and options.
func New(title string, options []Option) Model {
	return Model{
		title:    title,
		options:  options,
		selected: 0,
	}
}

// SetSize sets the viewport dimensions for overlay rendering.
func (m Model) SetSize(width, height int) Model {
	m.viewportWidth = width
	m.viewportHeight = height
	return m
}

// SetBoxWidth sets the width of the picker box itself.
func (m Model) SetBoxWidth(width int) Model {
	m.boxWidth = width
	return m
}

// SetSelected sets the initially selected index.
func (m Model) SetSelected(index int) Model {
	if index >= 0 && index < len(m.options) {
		m.selected = index
	}
	return m
}

// Selected returns the currently selected option.
func (m Model) Selected() Option {
	if m.selected >= 0 && m.selected < len(m.options) {
		return m.options[m.selected]
	}
	return Option{}
}

// Len returns the number of options.
func (m Model) Len() int {
	return len(m.options)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "down", "ctrl+n", "tab":
			if m.selected < len(m.options)-1 {
				m.selected++
			}
		case "up", "ctrl+p", "shift+tab":
			if m.selected > 0 {
				m.selected--
			}
		case "enter":
			if len(m.options) == 0 {
				return m, cancel
			}
			opt := m.Selected()
			return m, func() tea.Msg { return SelectMsg{Option: opt} }
		case "esc":
			return m, cancel
		}
	}
	return m, nil
}

func cancel() tea.Msg { return CancelMsg{} }

// View renders the picker box (without positioning).
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)

	width := m.boxWidth
	if width == 0 {
		width = 32
	}

	var options strings.Builder
	if len(m.options) == 0 {
		options.WriteString(styles.HintStyle.Render(" (nothing configured)"))
	}
	for i, opt := range m.options {
		label := " " + opt.Label
		if i == m.selected {
			label = selectionStyle.Render(">" + opt.Label)
		}
		line := label
		if opt.Hint != "" {
			hint := styles.HintStyle.Render(opt.Hint)
			gap := width - lipgloss.Width(label) - lipgloss.Width(hint) - 1
			if gap < 1 {
				gap = 1
			}
			line = label + strings.Repeat(" ", gap) + hint
		}
		options.WriteString(line)
		if i < len(m.options)-1 {
			options.WriteString("\n")
		}
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width)

	// Divider spans full width (no padding)
	dividerStyle := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor)
	divider := dividerStyle.Render(strings.Repeat("─", width))
	content := titleStyle.Render(m.title) + "\n" +
		divider + "\n" +
		options.String()

	return boxStyle.Render(content)
}

// Overlay renders the picker on top of a background view.
func (m Model) Overlay(background string) string {
	pickerBox := m.View()

	if background == "" {
		return lipgloss.Place(
			m.viewportWidth, m.viewportHeight,
			lipgloss.Center, lipgloss.Center,
			pickerBox,
		)
	}

	return overlay.Place(overlay.Config{
		Width:    m.viewportWidth,
		Height:   m.viewportHeight,
		Position: overlay.Center,
	}, pickerBox, background)
}

// FindIndexByValue returns the index of the option with the given value.
func FindIndexByValue(options []Option, value string) int {
	for i, opt := range options {
		if opt.Value == value {
			return i
		}
	}
	return 0
}
