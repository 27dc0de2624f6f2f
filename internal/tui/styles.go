package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the timeline styles.
type Styles struct {
	App      lipgloss.Style
	Header   lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Moving   lipgloss.Style
	Done     lipgloss.Style
	Auto     lipgloss.Style
	Muted    lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the styles used by the timeline.
func DefaultStyles() Styles {
	accent := lipgloss.Color("6")
	subtle := lipgloss.Color("8")

	return Styles{
		App: lipgloss.NewStyle().Padding(1, 2),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(subtle).
			MarginBottom(1),
		Row:      lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().PaddingLeft(1).Border(lipgloss.ThickBorder(), false, false, false, true).BorderForeground(accent).Bold(true),
		Moving:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		Done:     lipgloss.NewStyle().Foreground(subtle).Strikethrough(true),
		Auto:     lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		Muted:    lipgloss.NewStyle().Foreground(subtle),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")).MarginTop(1),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).MarginTop(1),
	}
}
