package regform

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/regform/internal/registration"
	"github.com/zjrosen/regform/internal/ui/styles"
)

const (
	title    = "Student Registration Form"
	subtitle = "Please fill in all required fields"

	zoneSubmit = "regform-submit"
)

func fieldZoneID(f registration.Field) string {
	return "regform-field-" + string(f)
}

func optionZoneID(f registration.Field, i int) string {
	return fmt.Sprintf("regform-option-%s-%d", f, i)
}

// View renders the form.
func (m Model) View() string {
	parts := []string{
		styles.TitleStyle.Render(title),
		styles.SubtitleStyle.Render(subtitle),
		"",
	}
	if m.toaster.Visible() {
		parts = append(parts, m.toaster.View())
	}
	parts = append(parts, m.viewport.View(), "", m.renderHelp(), m.renderStatus())
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// refresh re-renders the body into the viewport and records where each
// field landed.
func (m *Model) refresh() {
	m.toaster = m.toaster.SetWidth(m.width)
	m.viewport.Width = m.width
	footer := 2 + lipgloss.Height(m.renderHelp())
	m.viewport.Height = max(m.height-headerHeight-footer-m.toasterHeight(), 3)

	lines, offsets := m.renderBody()
	m.offsets = offsets
	m.buttonLine = len(lines) - 1
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m Model) renderBody() ([]string, map[registration.Field]int) {
	offsets := make(map[registration.Field]int, len(m.fields))
	var lines []string

	idx := 0
	for _, sec := range sections {
		var rows []string
		state := styles.SectionIdle
		invalid := 0
		for range sec.fields {
			fs := &m.fields[idx]
			focused := idx == m.focusedIndex
			if focused {
				state = styles.SectionFocused
			}
			if m.state.VisibleError(fs.field) != "" {
				invalid++
			}
			if len(rows) > 0 {
				rows = append(rows, "")
			}
			if fs.field == registration.FieldTermsAccepted {
				rows = append(rows, strings.Split(m.terms, "\n")...)
				rows = append(rows, "")
			}
			// +1 for the section's top border.
			offsets[fs.field] = len(lines) + 1 + len(rows)
			rows = append(rows, m.renderField(fs, focused)...)
			idx++
		}
		hint := ""
		if invalid > 0 {
			state = styles.SectionInvalid
			hint = pluralize(invalid, "error")
		}
		lines = append(lines, strings.Split(styles.RenderFormSection(rows, sec.title, hint, m.width, state), "\n")...)
	}

	lines = append(lines, "", m.renderButton())
	return lines, offsets
}

func (m Model) renderField(fs *fieldState, focused bool) []string {
	inner := m.width - 2
	var rows []string

	if fs.kind != registration.KindFlag {
		label := fs.field.Label()
		if fs.field.Validated() {
			label += " *"
		}
		if focused {
			rows = append(rows, " "+styles.FocusedLabelStyle.Render(label))
		} else {
			rows = append(rows, " "+styles.LabelStyle.Render(label))
		}
	}

	switch fs.kind {
	case registration.KindText:
		rows = append(rows, zone.Mark(fieldZoneID(fs.field), "  "+fs.input.View()))

	case registration.KindChoice:
		rows = append(rows, zone.Mark(fieldZoneID(fs.field), "  "+m.renderSelection(fs, inner-4)))
		if focused {
			rows = append(rows, m.renderOptions(fs, inner)...)
		}

	case registration.KindFlag:
		box := "[ ]"
		if fs.checked {
			box = "[" + styles.SelectionIndicatorStyle.Render("x") + "]"
		}
		label := flagLabels[fs.field]
		if fs.field.Validated() {
			label += " *"
		}
		if focused {
			label = styles.FocusedLabelStyle.Render(label)
		} else {
			label = styles.LabelStyle.Render(label)
		}
		rows = append(rows, zone.Mark(fieldZoneID(fs.field), " "+box+" "+label))
	}

	if msg := m.state.VisibleError(fs.field); msg != "" {
		rows = append(rows, "  "+styles.FieldErrorStyle.Render(ansi.Truncate(msg, inner-3, "…")))
	}
	return rows
}

func (m Model) renderSelection(fs *fieldState, width int) string {
	if fs.selected == "" {
		return styles.HintStyle.Render(ansi.Truncate(placeholders[fs.field]+" ▾", width, "…"))
	}
	return ansi.Truncate(m.catalog.Label(fs.field, fs.selected), width, "…") + styles.HintStyle.Render(" ▾")
}

func (m Model) renderOptions(fs *fieldState, inner int) []string {
	end := min(fs.offset+maxVisibleOptions, len(fs.options))
	rows := make([]string, 0, end-fs.offset+1)
	for i := fs.offset; i < end; i++ {
		o := fs.options[i]
		prefix := "    "
		if i == fs.cursor {
			prefix = "  " + styles.SelectionIndicatorStyle.Render("▸") + " "
		}
		radio := "○ "
		if o.Value == fs.selected {
			radio = styles.SelectionIndicatorStyle.Render("●") + " "
		}
		label := ansi.Truncate(o.Label, inner-8, "…")
		rows = append(rows, zone.Mark(optionZoneID(fs.field, i), prefix+radio+label))
	}
	if len(fs.options) > maxVisibleOptions {
		rows = append(rows, styles.HintStyle.Render(fmt.Sprintf("    %d/%d", fs.cursor+1, len(fs.options))))
	}
	return rows
}

func (m Model) renderButton() string {
	label := "Register"
	var btn string
	switch {
	case m.state.Submitted():
		btn = styles.DisabledButtonStyle.Render(label)
	case m.focusedIndex < 0:
		btn = styles.PrimaryButtonFocusedStyle.Render(label)
	default:
		btn = styles.PrimaryButtonStyle.Render(label)
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, zone.Mark(zoneSubmit, btn))
}

func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = m.showAllHelp
	h.Width = m.width
	return h.View(m.keys)
}

func (m Model) renderStatus() string {
	status := "Registered this session: " + fmt.Sprint(m.registered)
	if m.state.Submitted() {
		status += " · form resets shortly"
	}
	return styles.HintStyle.Render(status)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
