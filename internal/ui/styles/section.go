package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// SectionState picks the border color of a form section.
type SectionState int

const (
	SectionIdle SectionState = iota
	SectionFocused
	SectionInvalid
)

// RenderFormSection renders a rounded box with the title inline in the top
// border: ╭─ Title (hint) ───╮. Content lines are padded to width.
func RenderFormSection(content []string, title, hint string, width int, state SectionState) string {
	var color lipgloss.TerminalColor = BorderDefaultColor
	switch state {
	case SectionFocused:
		color = BorderHighlightFocusColor
	case SectionInvalid:
		color = StatusErrorColor
	}
	border := lipgloss.NewStyle().Foreground(color)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(color)

	inner := max(width-2, 1)

	var top string
	if title == "" {
		top = border.Render(borderTopLeft + strings.Repeat(borderHorizontal, inner) + borderTopRight)
	} else {
		label := title
		if hint != "" {
			label += " (" + hint + ")"
		}
		dashes := max(inner-lipgloss.Width(label)-3, 0)
		top = border.Render(borderTopLeft+borderHorizontal+" ") + titleStyle.Render(title)
		if hint != "" {
			top += " " + HintStyle.Render("("+hint+")")
		}
		top += border.Render(" " + strings.Repeat(borderHorizontal, dashes) + borderTopRight)
	}

	var b strings.Builder
	b.WriteString(top)
	for _, row := range content {
		pad := ""
		if w := lipgloss.Width(row); w < inner {
			pad = strings.Repeat(" ", inner-w)
		}
		b.WriteString("\n" + border.Render(borderVertical) + row + pad + border.Render(borderVertical))
	}
	b.WriteString("\n" + border.Render(borderBottomLeft+strings.Repeat(borderHorizontal, inner)+borderBottomRight))
	return b.String()
}
