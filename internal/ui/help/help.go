// Package help contains the help overlay component.
package help

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/sigtrack/internal/keys"
	"github.com/zjrosen/sigtrack/internal/log"
	"github.com/zjrosen/sigtrack/internal/ui/markdown"
	"github.com/zjrosen/sigtrack/internal/ui/overlay"
	"github.com/zjrosen/sigtrack/internal/ui/styles"
)

const (
	maxBodyWidth = 64
	minBodyWidth = 30
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayBorderColor)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(11)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextDescriptionColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// Model holds the help view state.
type Model struct {
	keys      keys.KeyMap
	actions   []keys.ActionBinding
	longPress time.Duration
	style     string
	width     int
	height    int
	body      string
}

// New creates a help view for the editor key map and the configured
// broadcast actions. longPress is the Save TS hold threshold.
func New(km keys.KeyMap, actions []keys.ActionBinding, longPress time.Duration) Model {
	m := Model{keys: km, actions: actions, longPress: longPress}
	m.body = m.render()
	return m
}

// WithStyle selects the glamour style ("dark" or "light").
func (m Model) WithStyle(style string) Model {
	m.style = style
	m.body = m.render()
	return m
}

// SetSize updates dimensions and re-renders for the new width.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.body = m.render()
	return m
}

// View renders the help overlay (standalone, no background).
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box on top of a background view.
func (m Model) Overlay(background string) string {
	helpBox := m.box()

	if background == "" {
		return lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			helpBox,
		)
	}

	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, helpBox, background)
}

// Markdown returns the help document before rendering.
func (m Model) Markdown() string {
	var b strings.Builder

	b.WriteString("## Editing\n\n")
	writeTable(&b, m.keys.Undo, m.keys.Redo, m.keys.Clear)

	b.WriteString("\n## Saving\n\n")
	writeTable(&b, m.keys.Save, m.keys.SaveTS)
	fmt.Fprintf(&b, "\nHold **Save TS** for %s to open the antidelay prompt. "+
		"A shorter press does nothing. The saved timestamp is moved back by "+
		"the antidelay.\n", m.longPress)

	var bound []key.Binding
	for _, a := range m.actions {
		if a.Binding.Enabled() {
			bound = append(bound, a.Binding)
		}
	}
	if len(bound) > 0 {
		b.WriteString("\n## Broadcasts\n\n")
		writeTable(&b, bound...)
	}

	b.WriteString("\n## General\n\n")
	writeTable(&b, m.keys.ToggleHistory, m.keys.Help, m.keys.Escape, m.keys.Quit)
	return b.String()
}

func writeTable(b *strings.Builder, bindings ...key.Binding) {
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, k := range bindings {
		h := k.Help()
		fmt.Fprintf(b, "| `%s` | %s |\n", h.Key, h.Desc)
	}
}

func (m Model) bodyWidth() int {
	w := maxBodyWidth
	if m.width > 0 && m.width-8 < w {
		w = m.width - 8
	}
	if w < minBodyWidth {
		w = minBodyWidth
	}
	return w
}

// render produces the body through glamour, falling back to plain
// key/description rows if the renderer cannot be built.
func (m Model) render() string {
	r, err := markdown.New(m.bodyWidth(), m.style)
	if err == nil {
		var out string
		out, err = r.Render(m.Markdown())
		if err == nil {
			return strings.Trim(out, "\n")
		}
	}
	log.ErrorErr(log.CatUI, "help render failed", err)
	return m.plain()
}

func (m Model) plain() string {
	var b strings.Builder
	for _, group := range m.keys.FullHelp() {
		for _, k := range group {
			b.WriteString(renderBinding(k))
		}
	}
	for _, a := range m.actions {
		if a.Binding.Enabled() {
			b.WriteString(renderBinding(a.Binding))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	return keyStyle.Render(h.Key) + descStyle.Render(h.Desc) + "\n"
}

func (m Model) box() string {
	body := contentStyle.Render(m.body + "\n" + footerStyle.Render("Press F1 or Esc to close"))
	boxWidth := lipgloss.Width(body)

	var content strings.Builder
	content.WriteString(titleStyle.Render("Keybindings"))
	content.WriteString("\n")
	content.WriteString(dividerStyle.Render(strings.Repeat("─", boxWidth)))
	content.WriteString("\n")
	content.WriteString(body)

	return boxStyle.Width(boxWidth).Render(content.String())
}
