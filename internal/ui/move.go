package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/stint/internal/dateutil"
	"github.com/javiermolinar/stint/internal/task"
	"github.com/javiermolinar/stint/internal/timeline"
)

func (a *App) moveCmd() *cobra.Command {
	var (
		toDate string
		atTime string
		by     int
	)

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a scheduled task",
		Long: `Move a task to another day and/or shift it in time.

Shifts are rounded to the nearest 15 minutes. Moving to another day keeps
the time of day unless --at sets it. The scheduler is not rerun; overlaps
are reported.`,
		Example: `  stint move 3f2a... --by 30
  stint move 3f2a... --by -45
  stint move 3f2a... --to tomorrow
  stint move 3f2a... --to 2026-03-02 --by 60
  stint move 3f2a... --to friday --at 14:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if toDate == "" && atTime == "" && by == 0 {
				return errors.New("nothing to do: use --to, --at or --by")
			}
			if atTime != "" && by != 0 {
				return errors.New("--at and --by cannot be combined")
			}
			if err := a.ensureStore(); err != nil {
				return err
			}

			var target time.Time
			if toDate != "" {
				normalized, err := dateutil.NormalizeDate(toDate, time.Now())
				if err != nil {
					return fmt.Errorf("invalid --to date %q: %w", toDate, err)
				}
				target, err = time.ParseInLocation(task.DateLayout, normalized, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --to date %q: %w", toDate, err)
				}
			}

			svc := timeline.NewService(a.store)
			var change *timeline.Change
			var err error
			if atTime != "" {
				change, err = svc.MoveAt(context.Background(), args[0], target, atTime)
			} else {
				change, err = svc.Move(context.Background(), args[0], target, by)
			}
			if err != nil {
				return fmt.Errorf("moving task: %w", err)
			}
			printChange("Moved", change)
			return nil
		},
	}

	cmd.Flags().StringVar(&toDate, "to", "", "Target day (YYYY-MM-DD or relative, e.g. tomorrow)")
	cmd.Flags().StringVar(&atTime, "at", "", "New start time (HH:MM)")
	cmd.Flags().IntVar(&by, "by", 0, "Shift in minutes, rounded to 15 (negative moves earlier)")

	return cmd
}

func (a *App) snoozeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snooze <id>",
		Short: "Push a task to the next day",
		Long: `Push a task back by one day at the same time of day.

Example:
  stint snooze 3f2a...`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			change, err := timeline.NewService(a.store).Snooze(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("snoozing task: %w", err)
			}
			printChange("Snoozed", change)
			return nil
		},
	}
}

func (a *App) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as done, or back to todo",
		Long: `Toggle a task between todo and done.

Example:
  stint done 3f2a...`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			status, err := timeline.NewService(a.store).ToggleDone(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("updating task: %w", err)
			}
			fmt.Printf("Task %s is now %s %s\n", args[0], statusSymbol(status), status)
			return nil
		},
	}
}

func (a *App) acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <id>",
		Short: "Keep an automatic placement",
		Long: `Mark an automatically placed task [A] as chosen [P].

Example:
  stint accept 3f2a...`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			if err := timeline.NewService(a.store).Accept(context.Background(), args[0]); err != nil {
				return fmt.Errorf("accepting task: %w", err)
			}
			fmt.Printf("Task %s accepted\n", args[0])
			return nil
		},
	}
}

func printChange(verb string, change *timeline.Change) {
	s := change.Task
	fmt.Printf("%s %q to %s %s-%s\n", verb, s.Title,
		s.ScheduledStart.Format("Mon Jan 2"),
		s.ScheduledStart.Format("15:04"),
		s.ScheduledEnd.Format("15:04"))

	if c := change.Conflict; c != nil {
		overlap := task.OverlapMinutes(s.ScheduledStart, s.ScheduledEnd, c.ScheduledStart, c.ScheduledEnd)
		fmt.Println(formatWarning(fmt.Sprintf("! overlaps %q (%s-%s) by %s", c.Title,
			c.ScheduledStart.Format("15:04"), c.ScheduledEnd.Format("15:04"), FormatDuration(overlap))))
	}
}
