package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/stint/internal/dwplanner"
	"github.com/javiermolinar/stint/internal/task"
)

var errInvalidTasks = errors.New("invalid tasks")

func (a *App) scheduleCmd() *cobra.Command {
	var (
		save    bool
		asJSON  bool
		fromArg string
	)

	cmd := &cobra.Command{
		Use:   "schedule [file]",
		Short: "Schedule tasks from a JSON file",
		Long: `Place a list of tasks into the free time of the coming days.

The input is a JSON array of tasks, or an object with a "tasks" array,
read from the file argument or from stdin when the file is "-" or missing:

  [
    {"title": "Write report", "duration_minutes": 120, "importance": 5},
    {"title": "Call the bank", "duration_minutes": 15, "importance": 3, "date": "tomorrow"}
  ]

Dates may be YYYY-MM-DD or relative ("tomorrow", "friday", "next-week").`,
		Example: `  stint schedule tasks.json
  cat tasks.json | stint schedule --json
  stint schedule tasks.json --from 2026-03-02 --save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			base := a.now()
			if fromArg != "" {
				from, err := time.ParseInLocation(task.DateLayout, fromArg, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --from date %q: %w", fromArg, err)
				}
				base = from
			}

			tasks, err := readTaskFile(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			validation := dwplanner.NewValidator(base).Validate(tasks)
			if !validation.Valid {
				for _, ve := range validation.Errors {
					fmt.Fprintf(os.Stderr, "  - %s\n", ve.String())
				}
				return fmt.Errorf("%w: %d errors", errInvalidTasks, len(validation.Errors))
			}

			if err := a.ensureStore(); err != nil {
				return err
			}
			planner := dwplanner.New(nil, a.config, a.store, dwplanner.WithClock(a.now))

			result, err := planner.Schedule(ctx, dwplanner.AssignIDs(validation.Tasks), base)
			if err != nil {
				return fmt.Errorf("scheduling: %w", err)
			}

			if asJSON {
				if err := writeScheduleJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				displaySchedule(result)
			}

			if save && len(result.Scheduled) > 0 {
				if err := planner.Save(ctx, result); err != nil {
					return err
				}
				if !asJSON {
					fmt.Printf("\n%d tasks saved to database\n", len(result.Scheduled))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save the scheduled tasks")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().StringVar(&fromArg, "from", "", "First day of the horizon (YYYY-MM-DD, defaults to now)")

	return cmd
}

// readTaskFile reads tasks from the named file, or from stdin for "-" or no argument.
func readTaskFile(stdin io.Reader, args []string) ([]task.Task, error) {
	r := stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("opening task file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return decodeTasks(r)
}

// decodeTasks accepts a JSON array of tasks or an object holding one under "tasks".
func decodeTasks(r io.Reader) ([]task.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tasks: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", errInvalidTasks)
	}

	var tasks []task.Task
	if data[0] == '{' {
		var wrapper struct {
			Tasks []task.Task `json:"tasks"`
		}
		err = json.Unmarshal(data, &wrapper)
		tasks = wrapper.Tasks
	} else {
		err = json.Unmarshal(data, &tasks)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidTasks, err)
	}
	return tasks, nil
}

type droppedTask struct {
	Task   task.Task `json:"task"`
	Reason string    `json:"reason"`
}

type scheduleOutput struct {
	Scheduled []task.Scheduled `json:"scheduled"`
	Dropped   []droppedTask    `json:"dropped"`
	Notices   []string         `json:"notices,omitempty"`
}

func writeScheduleJSON(w io.Writer, result *dwplanner.PlanResult) error {
	out := scheduleOutput{
		Scheduled: result.Scheduled,
		Dropped:   make([]droppedTask, 0, len(result.Warnings)),
		Notices:   result.Notices,
	}
	for _, warning := range result.Warnings {
		out.Dropped = append(out.Dropped, droppedTask{Task: warning.Task, Reason: warning.Reason})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

// displaySchedule prints a proposed schedule.
func displaySchedule(result *dwplanner.PlanResult) {
	settings := result.Settings
	first := settings.BaseDate
	last := first.AddDate(0, 0, settings.DaysToSchedule-1)
	fmt.Printf("Horizon: %s - %s, %s-%s\n",
		first.Format("Mon Jan 2"), last.Format("Mon Jan 2"),
		settings.WorkStart, settings.WorkEnd)

	for _, n := range result.Notices {
		fmt.Println(formatWarning("Note: " + n))
	}

	fmt.Println()
	if len(result.Scheduled) == 0 {
		fmt.Println("No tasks scheduled.")
	} else {
		PrintDays(result.Days(), PrintOpts{ShowStats: true})
	}

	PrintWarnings(result.Warnings)

	fmt.Println()
	fmt.Printf("Total: %d scheduled", len(result.Scheduled))
	if len(result.Warnings) > 0 {
		fmt.Printf(", %d not scheduled", len(result.Warnings))
	}
	fmt.Println()
}
