// Package markdown renders markdown for the help overlay.
package markdown

import (
	"github.com/charmbracelet/glamour"
)

// noMarginStyle removes document margins so output can sit inside
// bordered overlays.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour TermRenderer with a fixed wrap width.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a markdown renderer with the given width and style.
// style should be "dark" or "light" and defaults to "dark".
// A fixed style is used instead of WithAutoStyle because auto detection
// queries the terminal and the reply leaks into the Bubble Tea input stream.
func New(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}
