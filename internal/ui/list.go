package ui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/stint/internal/dateutil"
	"github.com/javiermolinar/stint/internal/timeline"
)

func (a *App) listCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		days      int
		showIDs   bool
		copyOut   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled tasks by day",
		Long: `List stored tasks grouped by day.

Without flags, lists the configured scheduling horizon starting today.
--end lists an inclusive date range and takes precedence over --days.
[P] marks a task on the day you asked for, [A] one placed automatically.`,
		Example: `  stint list
  stint list --start=2026-01-15 --days=1
  stint list --start=2026-01-15 --end=2026-01-20
  stint list --ids
  stint list --copy`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			start, err := dateutil.ParseDate(startDate)
			if err != nil {
				return err
			}
			if endDate != "" {
				dateRange, err := dateutil.NewDateRange(startDate, endDate)
				if err != nil {
					return err
				}
				start = dateRange.Start
				days = dateRange.Days()
			}
			if days <= 0 {
				days = a.config.Schedule.DaysToSchedule
			}

			agenda, err := timeline.NewService(a.store).Agenda(context.Background(), start, days)
			if err != nil {
				return err
			}

			if len(agenda) == 0 {
				fmt.Println("No tasks found in the specified date range.")
				return nil
			}

			PrintDays(agenda, PrintOpts{ShowIDs: showIDs, ShowStats: true})

			if copyOut {
				if err := clipboard.WriteAll(FormatAgenda(agenda)); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Println(formatMuted("\nCopied to clipboard."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "First day (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&endDate, "end", "", "Last day, inclusive (YYYY-MM-DD)")
	cmd.Flags().IntVar(&days, "days", 0, "Number of days (defaults to the scheduling horizon)")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show task IDs")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the agenda to the clipboard")

	return cmd
}
