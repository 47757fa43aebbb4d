package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// InputSection frames one input line in a rounded box with the label set
// into the top edge: ╭─ Label ───╮. The border takes the focus color while
// focused.
func InputSection(line, label string, width int, focused bool) string {
	var color lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		color = BorderHighlightFocusColor
	}
	edge := lipgloss.NewStyle().Foreground(color)
	inner := max(width-2, 1)

	top := edge.Render("╭" + strings.Repeat("─", inner) + "╮")
	if label != "" {
		rest := max(inner-lipgloss.Width(label)-3, 0)
		top = edge.Render("╭─ ") +
			lipgloss.NewStyle().Bold(true).Foreground(color).Render(label) +
			edge.Render(" "+strings.Repeat("─", rest)+"╮")
	}

	body := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), false, true, true, true).
		BorderForeground(color).
		Width(inner).
		Render(line)

	return top + "\n" + body
}
