// Package toaster renders short notification banners above the form.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/regform/internal/ui/styles"
)

// Style determines the visual appearance of the toast.
type Style int

const (
	// StyleSuccess shows ✓ with a green border.
	StyleSuccess Style = iota
	// StyleError shows ✗ with a red border.
	StyleError
	// StyleInfo shows a muted border.
	StyleInfo
)

// Model holds the toaster state.
type Model struct {
	message string
	style   Style
	visible bool
	width   int
	id      int
}

// New creates a hidden toaster.
func New() Model {
	return Model{}
}

// Show displays message. Each call gets a new ID so that dismissals
// scheduled for an older toast leave this one alone.
func (m Model) Show(message string, style Style) Model {
	m.message = message
	m.style = style
	m.visible = message != ""
	m.id++
	return m
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Visible returns whether the toast is currently showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the text of the visible toast.
func (m Model) Message() string {
	if !m.visible {
		return ""
	}
	return m.message
}

// ID identifies the most recent Show.
func (m Model) ID() int {
	return m.id
}

// SetWidth sets the banner width. Zero sizes the banner to its content.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// Update hides the toast when a DismissMsg for it arrives.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.ID == m.id {
		return m.Hide()
	}
	return m
}

// View renders the banner.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())
	if m.width > 2 {
		style = style.Width(m.width - 2)
	}

	var content string
	switch m.style {
	case StyleError:
		style = style.BorderForeground(styles.ToastBorderErrorColor)
		content = "✗ " + m.message
	case StyleInfo:
		style = style.BorderForeground(styles.BorderDefaultColor)
		content = m.message
	default:
		style = style.BorderForeground(styles.ToastBorderSuccessColor)
		content = lipgloss.NewStyle().Foreground(styles.StatusSuccessColor).Render("✓") + " " + m.message
	}
	return style.Render(content)
}

// DismissMsg signals that the toast with ID should be dismissed.
type DismissMsg struct {
	ID int
}

// ScheduleDismiss returns a command that dismisses the current toast after d.
func (m Model) ScheduleDismiss(d time.Duration) tea.Cmd {
	id := m.id
	return tea.Tick(d, func(time.Time) tea.Msg {
		return DismissMsg{ID: id}
	})
}
