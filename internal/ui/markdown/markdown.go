// Package markdown renders the form's markdown blocks for the terminal.
package markdown

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/glamour"
)

//go:embed terms.md
var terms string

// Terms returns the terms and conditions document.
func Terms() string { return terms }

// noMarginStyle removes glamour's document margins so blocks line up with
// the form's own padding.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour renderer at a fixed wrap width.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer. style is "dark" or "light"; empty means dark.
// A named style is used instead of glamour.WithAutoStyle, which queries the
// terminal and leaks the response into Bubble Tea's input.
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

// Render transforms markdown to styled terminal output without the trailing
// blank lines glamour adds.
func (r *Renderer) Render(md string) (string, error) {
	out, err := r.renderer.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n "), nil
}
