// Package overlay draws one rendered block on top of another without
// clearing the background.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position anchors the foreground within the viewport.
type Position int

const (
	Center Position = iota
	Top
	Bottom
	BottomRight
)

// Config describes the viewport and anchor.
type Config struct {
	Width    int
	Height   int
	Position Position
	PadX     int // Distance from the right edge (BottomRight only)
	PadY     int // Distance from the top or bottom edge
}

// Place splices fg into bg line by line. Both may carry ANSI styling.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	x, y := origin(cfg, lipgloss.Width(fg), len(fgLines))

	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], line, x)
	}
	return strings.Join(bgLines, "\n")
}

func splice(bgLine, fgLine string, x int) string {
	left := ansi.Truncate(bgLine, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	end := x + ansi.StringWidth(fgLine)
	right := ""
	if end < ansi.StringWidth(bgLine) {
		right = ansi.TruncateLeft(bgLine, end, "")
	}
	return left + fgLine + right
}

func origin(cfg Config, w, h int) (x, y int) {
	x = (cfg.Width - w) / 2
	switch cfg.Position {
	case Top:
		y = cfg.PadY
	case Bottom:
		y = cfg.Height - h - cfg.PadY
	case BottomRight:
		x = cfg.Width - w - cfg.PadX
		y = cfg.Height - h - cfg.PadY
	default:
		y = (cfg.Height - h) / 2
	}
	return max(x, 0), max(y, 0)
}
