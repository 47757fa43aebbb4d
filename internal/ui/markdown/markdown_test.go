package markdown

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestNew_Widths(t *testing.T) {
	for _, w := range []int{40, 80, 120} {
		r, err := New(w, "")
		require.NoError(t, err, "New(%d)", w)
		require.Equal(t, w, r.Width())
	}
}

func TestNew_LightStyle(t *testing.T) {
	r, err := New(60, "light")
	require.NoError(t, err)
	require.NotNil(t, r)
}

func TestRender_Table(t *testing.T) {
	r, err := New(80, "")
	require.NoError(t, err)

	out, err := r.Render("| Key | Action |\n|---|---|\n| ctrl+z | undo |\n| ctrl+t | save with antidelay |")
	require.NoError(t, err)

	plain := ansi.Strip(out)
	require.Contains(t, plain, "ctrl+z")
	require.Contains(t, plain, "undo")
	require.Contains(t, plain, "save with antidelay")
}

func TestRender_HeadingAndList(t *testing.T) {
	r, err := New(80, "")
	require.NoError(t, err)

	out, err := r.Render("## Saving\n\n- Item 1\n- Item 2")
	require.NoError(t, err)

	plain := ansi.Strip(out)
	require.Contains(t, plain, "Saving")
	require.Contains(t, plain, "Item 1")
	require.Contains(t, plain, "Item 2")
}

func TestRender_WrapsToWidth(t *testing.T) {
	r, err := New(20, "")
	require.NoError(t, err)

	out, err := r.Render("press and hold the save button to open the antidelay prompt")
	require.NoError(t, err)

	for _, line := range strings.Split(ansi.Strip(out), "\n") {
		require.LessOrEqual(t, ansi.StringWidth(line), 20, "line %q too wide", line)
	}
}

