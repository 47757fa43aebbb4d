// Package modal provides the input prompt used to ask for the antidelay
// before a timestamped save.
package modal

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/sigtrack/internal/ui/overlay"
	"github.com/zjrosen/sigtrack/internal/ui/styles"
)

// InputConfig defines a single input field.
type InputConfig struct {
	Key         string // Identifier for this input (used in SubmitMsg.Values)
	Label       string // Label displayed in the input section border
	Placeholder string
	Value       string // Initial value (optional)
	MaxLength   int    // Character limit (0 = unlimited)
}

// Config controls modal appearance and behavior.
type Config struct {
	Title        string
	Message      string
	Inputs       []InputConfig
	ConfirmLabel string // Defaults to "OK"
	MinWidth     int    // Minimum width (0 = default 40)
	ZonePrefix   string // Mouse zone prefix for the buttons (default "modal")
}

// SubmitMsg is sent when the user confirms the modal.
// Values contains input values keyed by InputConfig.Key. Values are not
// validated here; the receiver decides whether they are acceptable and
// calls SetError when they are not.
type SubmitMsg struct {
	Values map[string]string
}

// CancelMsg is sent when the user cancels the modal (Esc or Cancel).
type CancelMsg struct{}

// Field identifies which button is focused.
type Field int

const (
	FieldConfirm Field = iota
	FieldCancel
)

// Model is the modal component state.
type Model struct {
	config       Config
	inputs       []textinput.Model
	inputKeys    []string
	focusedInput int   // -1 when focus is on the buttons
	focusedField Field // Which button is focused (when focusedInput == -1)
	errMsg       string
	width        int
	height       int
}

// New creates a modal. With no inputs it acts as a plain confirmation.
func New(cfg Config) Model {
	if cfg.ZonePrefix == "" {
		cfg.ZonePrefix = "modal"
	}
	if cfg.ConfirmLabel == "" {
		cfg.ConfirmLabel = "OK"
	}

	m := Model{
		config:       cfg,
		focusedInput: -1,
		focusedField: FieldConfirm,
	}

	m.inputs = make([]textinput.Model, len(cfg.Inputs))
	m.inputKeys = make([]string, len(cfg.Inputs))
	for i, inputCfg := range cfg.Inputs {
		ti := textinput.New()
		ti.Placeholder = inputCfg.Placeholder
		ti.Width = 36
		ti.Prompt = ""
		if inputCfg.MaxLength > 0 {
			ti.CharLimit = inputCfg.MaxLength
		}
		if inputCfg.Value != "" {
			ti.SetValue(inputCfg.Value)
		}
		if i == 0 {
			ti.Focus()
			m.focusedInput = 0
		}
		m.inputs[i] = ti
		m.inputKeys[i] = inputCfg.Key
	}

	return m
}

// Init starts the cursor blink when there is something to type into.
func (m Model) Init() tea.Cmd {
	if len(m.inputs) > 0 {
		return textinput.Blink
	}
	return nil
}

// Update handles messages for the modal.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down", "ctrl+n":
			return m.nextField(), nil

		case "shift+tab", "up", "ctrl+p":
			return m.prevField(), nil

		case "left":
			if m.focusedInput == -1 && m.focusedField == FieldCancel {
				m.focusedField = FieldConfirm
				return m, nil
			}

		case "right":
			if m.focusedInput == -1 && m.focusedField == FieldConfirm {
				m.focusedField = FieldCancel
				return m, nil
			}

		case "enter":
			if m.focusedInput >= 0 && m.focusedInput < len(m.inputs)-1 {
				return m.nextField(), nil
			}
			if m.focusedInput == -1 && m.focusedField == FieldCancel {
				return m, cancel
			}
			return m, m.submit()

		case "esc":
			return m, cancel
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease {
			return m, nil
		}
		if z := zone.Get(m.ConfirmZoneID()); z != nil && z.InBounds(msg) {
			return m, m.submit()
		}
		if z := zone.Get(m.CancelZoneID()); z != nil && z.InBounds(msg) {
			return m, cancel
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	if m.focusedInput >= 0 && m.focusedInput < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focusedInput], cmd = m.inputs[m.focusedInput].Update(msg)
		return m, cmd
	}

	return m, nil
}

func cancel() tea.Msg { return CancelMsg{} }

func (m Model) submit() tea.Cmd {
	values := make(map[string]string, len(m.inputs))
	for i, input := range m.inputs {
		values[m.inputKeys[i]] = input.Value()
	}
	return func() tea.Msg { return SubmitMsg{Values: values} }
}

func (m Model) nextField() Model {
	if m.focusedInput >= 0 {
		m.inputs[m.focusedInput].Blur()
		if m.focusedInput < len(m.inputs)-1 {
			m.focusedInput++
			m.inputs[m.focusedInput].Focus()
		} else {
			m.focusedInput = -1
			m.focusedField = FieldConfirm
		}
		return m
	}

	if m.focusedField == FieldConfirm {
		m.focusedField = FieldCancel
	} else if len(m.inputs) > 0 {
		m.focusedInput = 0
		m.inputs[0].Focus()
	} else {
		m.focusedField = FieldConfirm
	}
	return m
}

func (m Model) prevField() Model {
	if m.focusedInput >= 0 {
		m.inputs[m.focusedInput].Blur()
		if m.focusedInput > 0 {
			m.focusedInput--
			m.inputs[m.focusedInput].Focus()
		} else {
			m.focusedInput = -1
			m.focusedField = FieldCancel
		}
		return m
	}

	if m.focusedField == FieldCancel {
		m.focusedField = FieldConfirm
	} else if len(m.inputs) > 0 {
		m.focusedInput = len(m.inputs) - 1
		m.inputs[m.focusedInput].Focus()
	} else {
		m.focusedField = FieldCancel
	}
	return m
}

// View renders the modal content (without overlay).
func (m Model) View() string {
	minWidth := 40
	if m.config.MinWidth > minWidth {
		minWidth = m.config.MinWidth
	}
	contentWidth := minWidth
	if w := lipgloss.Width(m.config.Title); w > contentWidth {
		contentWidth = w
	}
	boxWidth := contentWidth + 2

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)
	divider := lipgloss.NewStyle().
		Foreground(styles.OverlayBorderColor).
		Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	if m.config.Message != "" {
		msgStyle := lipgloss.NewStyle().
			Foreground(styles.TextPrimaryColor).
			Width(contentWidth)
		content.WriteString(msgStyle.Render(m.config.Message))
		content.WriteString("\n\n")
	}

	for i, inputCfg := range m.config.Inputs {
		label := inputCfg.Label
		if label == "" {
			label = "Input"
		}
		section := styles.InputSection(m.inputs[i].View(), label, contentWidth, m.focusedInput == i)
		content.WriteString(section)
		content.WriteString("\n")
	}

	if m.errMsg != "" {
		content.WriteString(styles.ErrorTextStyle.Width(contentWidth).Render(m.errMsg))
		content.WriteString("\n")
	}
	if len(m.inputs) > 0 || m.errMsg != "" {
		content.WriteString("\n")
	}

	content.WriteString(m.renderButtons())

	var result strings.Builder
	result.WriteString(titleStyle.Render(m.config.Title))
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(lipgloss.NewStyle().Padding(1, 1).Render(content.String()))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth)

	return boxStyle.Render(result.String())
}

func (m Model) renderButtons() string {
	onButtons := m.focusedInput == -1

	confirmStyle := styles.PrimaryButtonStyle
	if onButtons && m.focusedField == FieldConfirm {
		confirmStyle = styles.PrimaryButtonFocusedStyle
	}
	cancelStyle := styles.SecondaryButtonStyle
	if onButtons && m.focusedField == FieldCancel {
		cancelStyle = styles.SecondaryButtonFocusedStyle
	}

	confirmBtn := zone.Mark(m.ConfirmZoneID(), confirmStyle.Render(m.config.ConfirmLabel))
	cancelBtn := zone.Mark(m.CancelZoneID(), cancelStyle.Render("Cancel"))
	return confirmBtn + "  " + cancelBtn
}

// Overlay renders the modal centered on the given background.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// SetSize updates the viewport size used for overlay centering.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetError shows msg under the inputs. An empty msg clears it.
func (m *Model) SetError(msg string) {
	m.errMsg = msg
}

// Error returns the inline error currently shown.
func (m Model) Error() string {
	return m.errMsg
}

// Value returns the current value of the input with the given key.
func (m Model) Value(key string) string {
	for i, k := range m.inputKeys {
		if k == key {
			return m.inputs[i].Value()
		}
	}
	return ""
}

// ConfirmZoneID is the mouse zone of the confirm button.
func (m Model) ConfirmZoneID() string { return m.config.ZonePrefix + "-confirm" }

// CancelZoneID is the mouse zone of the cancel button.
func (m Model) CancelZoneID() string { return m.config.ZonePrefix + "-cancel" }

// FocusedInput returns the focused input index (-1 if on buttons).
func (m Model) FocusedInput() int {
	return m.focusedInput
}

// FocusedField returns the focused button.
func (m Model) FocusedField() Field {
	return m.focusedField
}
