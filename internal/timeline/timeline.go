// Package timeline adjusts tasks that are already on the calendar: moving,
// snoozing, completing and accepting automatic placements. None of these
// operations reruns the scheduling engine.
package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/stint/internal/logger"
	"github.com/javiermolinar/stint/internal/task"
)

// Step is the grid every move snaps to.
const Step = 15 * time.Minute

// SnapMinutes rounds a minute offset to the nearest Step, halfway values
// away from zero: 7 becomes 0, 8 becomes 15, -8 becomes -15.
func SnapMinutes(delta int) int {
	d := (time.Duration(delta) * time.Minute).Round(Step)
	return int(d / time.Minute)
}

// Move shifts s by the snapped delta. When target is non-zero and on a
// different day, the shifted time of day is kept on the target date.
// The end is always start plus the task duration.
func Move(s task.Scheduled, target time.Time, deltaMinutes int) task.Scheduled {
	loc := s.ScheduledStart.Location()
	start := s.ScheduledStart.Add(time.Duration(SnapMinutes(deltaMinutes)) * time.Minute)

	if !target.IsZero() {
		target = target.In(loc)
		if !sameDay(target, s.ScheduledStart) {
			start = time.Date(target.Year(), target.Month(), target.Day(),
				start.Hour(), start.Minute(), 0, 0, loc)
		}
	}

	s.ScheduledStart = start
	s.ScheduledEnd = start.Add(s.Duration())
	return s
}

// Snooze pushes s back by one calendar day.
func Snooze(s task.Scheduled) task.Scheduled {
	s.ScheduledStart = s.ScheduledStart.AddDate(0, 0, 1)
	s.ScheduledEnd = s.ScheduledEnd.AddDate(0, 0, 1)
	return s
}

// ToggleStatus flips todo and done. Any other value becomes done.
func ToggleStatus(status task.Status) task.Status {
	if status == task.StatusDone {
		return task.StatusTodo
	}
	return task.StatusDone
}

// Change is the outcome of a timeline edit. Conflict is set when the task
// now overlaps another stored task; the edit is still applied.
type Change struct {
	Task     task.Scheduled
	Conflict *task.Scheduled
}

// Service applies timeline edits through a task store.
type Service struct {
	store task.Store
}

// NewService creates a Service backed by store.
func NewService(store task.Store) *Service {
	return &Service{store: store}
}

// Move relocates a stored task. See Move.
func (s *Service) Move(ctx context.Context, id string, target time.Time, deltaMinutes int) (*Change, error) {
	current, err := s.store.GetScheduled(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, Move(*current, target, deltaMinutes))
}

// MoveAt starts a stored task at clock ("HH:MM") on day, or on its current
// day when day is zero. The clock is used as given, without snapping.
func (s *Service) MoveAt(ctx context.Context, id string, day time.Time, clock string) (*Change, error) {
	current, err := s.store.GetScheduled(ctx, id)
	if err != nil {
		return nil, err
	}

	loc := current.ScheduledStart.Location()
	if day.IsZero() {
		day = current.ScheduledStart
	}
	start, err := task.At(day.In(loc), clock)
	if err != nil {
		return nil, err
	}

	moved := *current
	moved.ScheduledStart = start
	moved.ScheduledEnd = start.Add(moved.Duration())
	return s.apply(ctx, moved)
}

// Snooze pushes a stored task back by one day.
func (s *Service) Snooze(ctx context.Context, id string) (*Change, error) {
	current, err := s.store.GetScheduled(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, Snooze(*current))
}

// ToggleDone flips the status of a stored task and returns the new status.
func (s *Service) ToggleDone(ctx context.Context, id string) (task.Status, error) {
	current, err := s.store.GetScheduled(ctx, id)
	if err != nil {
		return "", err
	}

	next := ToggleStatus(current.Status)
	if err := s.store.SetStatus(ctx, id, next); err != nil {
		return "", fmt.Errorf("setting status: %w", err)
	}
	logger.Info("status toggled", "id", id, "status", next)
	return next, nil
}

// Accept keeps an automatic placement, clearing its auto-scheduled flag.
func (s *Service) Accept(ctx context.Context, id string) error {
	current, err := s.store.GetScheduled(ctx, id)
	if err != nil {
		return err
	}
	if !current.AutoScheduled {
		return nil
	}

	current.AutoScheduled = false
	if err := s.store.UpsertScheduled(ctx, []task.Scheduled{*current}); err != nil {
		return fmt.Errorf("accepting task: %w", err)
	}
	return nil
}

// Agenda returns the stored tasks of the given days grouped by day.
func (s *Service) Agenda(ctx context.Context, from time.Time, days int) ([]*task.Day, error) {
	if days <= 0 {
		days = 1
	}
	start := task.TruncateToDay(from)
	end := start.AddDate(0, 0, days-1)

	tasks, err := s.store.ListScheduledByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return task.GroupByDay(tasks), nil
}

func (s *Service) apply(ctx context.Context, moved task.Scheduled) (*Change, error) {
	if err := s.store.UpdateTimes(ctx, moved.ID, moved.ScheduledStart, moved.ScheduledEnd); err != nil {
		return nil, fmt.Errorf("updating times: %w", err)
	}
	logger.Info("task moved", "id", moved.ID, "start", moved.ScheduledStart.Format(time.RFC3339))

	change := &Change{Task: moved}

	sameDayTasks, err := s.store.ListScheduledByDateRange(ctx, moved.ScheduledStart, moved.ScheduledStart)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	for _, day := range task.GroupByDay(sameDayTasks) {
		day.RemoveTask(moved.ID)
		if other, ok := day.FindOverlappingTask(moved.ScheduledStart, moved.ScheduledEnd); ok {
			change.Conflict = &other
			logger.Warn("moved task overlaps another", "id", moved.ID, "other", other.ID)
		}
	}

	return change, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
