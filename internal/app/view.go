package app

import (
	"fmt"
	"strings"

	bhelp "github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/sigtrack/internal/antidelay"
	"github.com/zjrosen/sigtrack/internal/signals"
	"github.com/zjrosen/sigtrack/internal/ui/styles"
)

const (
	historyRows = 5
	minInputRow = 3
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			PaddingLeft(1)

	entryStyle = lipgloss.NewStyle().
			Foreground(styles.TextDescriptionColor)
)

// layout sizes the text area to whatever the chrome leaves over.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	chrome := 1 + 1 + 1 + 1 // header, blank, controls, status
	if m.showHistory {
		chrome += 1 + historyRows
	}
	h := m.height - chrome - 2 // text area border
	if h < minInputRow {
		h = minInputRow
	}
	m.input.SetWidth(m.width - 2)
	m.input.SetHeight(h)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderControls())
	if m.showHistory {
		b.WriteString("\n")
		b.WriteString(m.renderHistory())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	view := b.String()

	if m.promptOpen {
		view = m.prompt.Overlay(view)
	}
	if m.pickerOpen {
		view = m.intents.Overlay(view)
	}
	if m.showHelp {
		view = m.help.Overlay(view)
	}
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}

	return zone.Scan(view)
}

func (m Model) renderHeader() string {
	left := titleStyle.Render("sigtrack")
	right := styles.HintStyle.Render(fmt.Sprintf("history %d/%d", m.history.Cursor()+1, m.history.Len()))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderControls() string {
	var buttons []string

	undo := styles.SecondaryButtonStyle
	if !m.history.CanUndo() {
		undo = styles.DisabledButtonStyle
	}
	redo := styles.SecondaryButtonStyle
	if !m.history.CanRedo() {
		redo = styles.DisabledButtonStyle
	}
	buttons = append(buttons,
		zone.Mark(zoneUndo, undo.Render("Undo")),
		zone.Mark(zoneRedo, redo.Render("Redo")),
		zone.Mark(zoneClear, styles.SecondaryButtonStyle.Render("Clear")),
	)

	save := styles.PrimaryButtonStyle
	if m.flash == flashSave {
		save = styles.PressedButtonStyle
	}
	buttons = append(buttons, zone.Mark(zoneSave, save.Render("Save")))

	saveTSLabel := "Save TS"
	saveTS := styles.PrimaryButtonStyle
	switch {
	case m.gesture.State() == antidelay.GestureFired:
		saveTS = styles.ArmedButtonStyle
		saveTSLabel = "Release"
	case m.gesture.State() == antidelay.GestureArmed:
		saveTS = styles.ArmedButtonStyle
	case m.flash == flashSaveTS:
		saveTS = styles.PressedButtonStyle
	case m.coord.State() != antidelay.StateIdle:
		saveTS = styles.DisabledButtonStyle
	}
	buttons = append(buttons, zone.Mark(zoneSaveTS, saveTS.Render(saveTSLabel)))

	for i, ab := range m.actions {
		buttons = append(buttons, zone.Mark(intentZone(i), styles.SecondaryButtonStyle.Render(ab.Action.Name)))
	}

	return " " + strings.Join(buttons, " ")
}

func (m Model) renderHistory() string {
	entries := m.history.Entries()
	cursor := m.history.Cursor()

	start := cursor - historyRows/2
	if start > len(entries)-historyRows {
		start = len(entries) - historyRows
	}
	if start < 0 {
		start = 0
	}
	end := start + historyRows
	if end > len(entries) {
		end = len(entries)
	}

	width := m.width - 6
	if width < 10 {
		width = 10
	}

	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("History"))
	for i := start; i < end; i++ {
		text := strings.ReplaceAll(entries[i], "\n", " ⏎ ")
		if text == "" {
			text = "(empty)"
		}
		text = runewidth.Truncate(text, width, "…")
		b.WriteString("\n")
		if i == cursor {
			b.WriteString(styles.CursorStyle.Render(" ▸ " + text))
		} else {
			b.WriteString(entryStyle.Render("   " + text))
		}
	}
	for i := end - start; i < historyRows; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStatus() string {
	change := signals.Summary(m.lastSaved, m.input.Value())
	state := "saved"
	if !change.IsZero() {
		state = "unsaved " + change.String()
	}

	parts := []string{state, fmt.Sprintf("%d saved", m.savedCount)}
	if m.lastSignal != nil {
		parts = append(parts, "last "+m.lastSignal.Label())
	}
	if s := m.coord.State(); s != antidelay.StateIdle {
		parts = append(parts, s.String())
	}

	h := bhelp.New()
	h.ShortSeparator = " · "
	hints := h.ShortHelpView(m.keys.ShortHelp())

	return styles.StatusBarStyle.Render(strings.Join(parts, " | ")) + "  " + hints
}
