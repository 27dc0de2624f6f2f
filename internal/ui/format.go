package ui

import (
	"fmt"
	"strings"

	"github.com/javiermolinar/stint/internal/scheduler"
	"github.com/javiermolinar/stint/internal/task"
)

// PrintOpts configures task printing behavior.
type PrintOpts struct {
	ShowIDs      bool // Show task IDs
	ShowStats    bool // Show the per-day summary line
	MaxDescWidth int  // Maximum title width (0 = auto)
}

// CalcMaxDescWidth calculates the maximum title width for the terminal.
func (o PrintOpts) CalcMaxDescWidth(defaultWidth int) int {
	if o.MaxDescWidth > 0 {
		return o.MaxDescWidth
	}
	// Base: "  ○ HH:MM-HH:MM  [A]  " plus "  XhYm" = ~30 chars
	overhead := 30
	if o.ShowIDs {
		overhead += 38
	}
	available := termWidth() - overhead
	if available > defaultWidth {
		return available
	}
	return defaultWidth
}

// PrintTaskRow prints a single scheduled task.
func PrintTaskRow(s task.Scheduled, opts PrintOpts, maxDescWidth int) {
	fmt.Println(formatTaskRow(s, opts, maxDescWidth))
}

func formatTaskRow(s task.Scheduled, opts PrintOpts, maxDescWidth int) string {
	var marker string
	if s.AutoScheduled {
		marker = formatAuto("[A]")
	} else {
		marker = formatPinned("[P]")
	}

	title := truncate(s.Title, maxDescWidth)
	if s.IsDone() {
		title = formatMuted(title)
	}

	row := fmt.Sprintf("  %s %s-%s  %s  %-*s  %s",
		statusSymbol(s.Status),
		s.ScheduledStart.Format("15:04"),
		s.ScheduledEnd.Format("15:04"),
		marker,
		maxDescWidth, title,
		formatMuted(FormatDuration(s.Minutes())),
	)
	if opts.ShowIDs {
		row += "  " + formatMuted(s.ID)
	}
	return row
}

// PrintDays prints tasks grouped by day with a header per day.
func PrintDays(days []*task.Day, opts PrintOpts) {
	width := opts.CalcMaxDescWidth(40)
	for i, d := range days {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(renderDayHeader(d.Date.Format("Monday, January 2")))
		for _, s := range d.Tasks() {
			PrintTaskRow(s, opts, width)
		}
		if opts.ShowStats {
			PrintDayStats(d.Stats())
		}
	}
}

// PrintDayStats prints the summary line of a day.
func PrintDayStats(stats task.DayStats) {
	line := fmt.Sprintf("  %d tasks | %s planned", stats.Tasks, FormatDuration(stats.PlannedMinutes))
	if stats.DoneTasks > 0 {
		line += " | " + formatStats(fmt.Sprintf("%d%% done", stats.DonePercent()))
	}
	if stats.AutoScheduled > 0 {
		line += fmt.Sprintf(" | %d auto", stats.AutoScheduled)
	}
	fmt.Println(formatMuted(line))
}

// PrintWarnings lists tasks that could not be placed.
func PrintWarnings(warnings []scheduler.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(formatHeader("Not scheduled:"))
	for _, w := range warnings {
		fmt.Printf("  %s\n", formatWarning("! "+w.String()))
	}
}

// PrintQuestions lists clarifying questions from the extractor.
func PrintQuestions(questions []string) {
	if len(questions) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(formatHeader("Questions:"))
	for _, q := range questions {
		fmt.Printf("  %s\n", formatQuestion("? "+q))
	}
}

// FormatAgenda renders days as plain text, one line per task.
func FormatAgenda(days []*task.Day) string {
	var sb strings.Builder
	for i, d := range days {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(d.Date.Format("Monday, January 2"))
		sb.WriteString("\n")
		for _, s := range d.Tasks() {
			check := " "
			if s.IsDone() {
				check = "x"
			}
			fmt.Fprintf(&sb, "- [%s] %s-%s %s (%s)\n",
				check,
				s.ScheduledStart.Format("15:04"),
				s.ScheduledEnd.Format("15:04"),
				s.Title,
				FormatDuration(s.Minutes()),
			)
		}
	}
	return sb.String()
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func statusSymbol(s task.Status) string {
	switch s {
	case task.StatusDone:
		return "✓"
	case task.StatusTodo, "":
		return "○"
	default:
		return "?"
	}
}
