package tui

import (
	"fmt"
	"strings"

	"github.com/javiermolinar/stint/internal/task"
)

// View renders the selected day.
func (m Model) View() string {
	if m.loading && m.agenda == nil {
		return "Loading..."
	}
	if len(m.agenda) == 0 {
		return m.styles.App.Render("No days to show.")
	}

	day := m.agenda[m.day]
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(m.dayTitle(day)))
	b.WriteString("\n")

	tasks := day.Tasks()
	if len(tasks) == 0 {
		b.WriteString(m.styles.Row.Render(m.styles.Muted.Render("Nothing scheduled")))
		b.WriteString("\n")
	}
	for i, s := range tasks {
		b.WriteString(m.renderRow(s, i == m.selected))
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		style := m.styles.Status
		if strings.HasPrefix(m.statusMsg, "Error") {
			style = m.styles.Error
		}
		b.WriteString(style.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.helpBindings()))
	return m.styles.App.Render(b.String())
}

func (m Model) dayTitle(day *task.Day) string {
	title := day.Date.Format("Monday 02 Jan 2006")
	if day.Date.Equal(task.TruncateToDay(m.now().In(day.Date.Location()))) {
		title += " (today)"
	}
	title = fmt.Sprintf("%s  %d/%d", title, m.day+1, len(m.agenda))

	if stats := day.Stats(); stats.Tasks > 0 {
		title += fmt.Sprintf("  ·  %d/%d done  %s planned", stats.DoneTasks, stats.Tasks, formatMinutes(stats.PlannedMinutes))
	}
	return title
}

func (m Model) renderRow(s task.Scheduled, selected bool) string {
	symbol := "○"
	if s.IsDone() {
		symbol = "✓"
	}
	line := fmt.Sprintf("%s %s-%s  %s  %s",
		symbol,
		s.ScheduledStart.Format("15:04"),
		s.ScheduledEnd.Format("15:04"),
		s.Title,
		formatMinutes(s.Minutes()),
	)

	switch {
	case s.IsDone():
		line = m.styles.Done.Render(line)
	case s.AutoScheduled:
		line += " " + m.styles.Auto.Render("[auto]")
	}

	if !selected {
		return m.styles.Row.Render(line)
	}
	if m.mode == ModeMove {
		if preview, ok := m.movePreview(); ok {
			line += "  " + m.styles.Moving.Render("→ "+formatSlot(preview, s))
		}
	}
	return m.styles.Selected.Render(line)
}

// formatSlot prints the preview time range, with the day when it changes.
func formatSlot(preview, current task.Scheduled) string {
	slot := preview.ScheduledStart.Format("15:04") + "-" + preview.ScheduledEnd.Format("15:04")
	if !preview.Date().Equal(current.Date()) {
		slot = preview.ScheduledStart.Format("Mon 02 ") + slot
	}
	return slot
}

func formatMinutes(minutes int) string {
	h, mins := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, mins)
	}
}
