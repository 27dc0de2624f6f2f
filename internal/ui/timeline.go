package ui

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/stint/internal/dateutil"
	"github.com/javiermolinar/stint/internal/timeline"
	"github.com/javiermolinar/stint/internal/tui"
)

var errNotTerminal = errors.New("timeline needs an interactive terminal; use list instead")

func (a *App) timelineCmd() *cobra.Command {
	var (
		startDate string
		days      int
	)

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Browse and adjust scheduled tasks interactively",
		Long: `Open the interactive timeline, one day at a time.

Select a task and press m to move it: j/k shift it by 15 minutes, J/K by an
hour, h/l to another day, enter stores the move. s snoozes a task to the
next day, d toggles done and a accepts an automatic placement. Every change
is stored immediately; the scheduler is not rerun.`,
		Example: `  stint timeline
  stint timeline --start 2026-03-02 --days 5`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !isTerminal() {
				return errNotTerminal
			}
			if err := a.ensureStore(); err != nil {
				return err
			}

			start, err := dateutil.ParseDate(startDate)
			if err != nil {
				return err
			}
			if days <= 0 {
				days = a.config.Schedule.DaysToSchedule
			}

			return tui.Run(timeline.NewService(a.store), start, days)
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "First day (YYYY-MM-DD, defaults to today)")
	cmd.Flags().IntVar(&days, "days", 0, "Number of days (defaults to the scheduling horizon)")

	return cmd
}
