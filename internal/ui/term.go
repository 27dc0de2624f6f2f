package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Placed on the requested day: bold cyan
	colorPinned = color.New(color.FgCyan, color.Bold)

	// Placed automatically: plain cyan
	colorAuto = color.New(color.FgCyan)

	// Dropped tasks and conflicts
	colorWarning = color.New(color.FgYellow)

	// Questions from the extractor
	colorQuestion = color.New(color.FgMagenta)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Stats: green for positive metrics
	colorStats = color.New(color.FgGreen)

	// Muted: for secondary information and done tasks
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// dayHeaderStyle boxes the date line above each day.
var dayHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("6")).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("8")).
	Padding(0, 1)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// isTerminal reports whether stdin is interactive.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

func formatPinned(s string) string {
	return colorPinned.Sprint(s)
}

func formatAuto(s string) string {
	return colorAuto.Sprint(s)
}

func formatWarning(s string) string {
	return colorWarning.Sprint(s)
}

func formatQuestion(s string) string {
	return colorQuestion.Sprint(s)
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatStats(s string) string {
	return colorStats.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

// renderDayHeader boxes a header line, plain when colors are off.
func renderDayHeader(s string) string {
	if color.NoColor {
		return "=== " + s + " ==="
	}
	return dayHeaderStyle.Render(s)
}
