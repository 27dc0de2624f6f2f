package task

import (
	"fmt"
	"slices"
	"time"
)

// Day holds all scheduled tasks for a single calendar day.
type Day struct {
	Date  time.Time
	tasks []Scheduled // sorted by ScheduledStart
}

// NewDay creates a Day for the given date.
func NewDay(date time.Time) *Day {
	return &Day{
		Date:  TruncateToDay(date),
		tasks: make([]Scheduled, 0),
	}
}

// NewDayWithTasks creates a Day from a slice of tasks.
// Tasks must be for the same date. Returns error if tasks overlap.
func NewDayWithTasks(date time.Time, tasks []Scheduled) (*Day, error) {
	d := NewDay(date)
	for _, t := range tasks {
		if err := d.AddTask(t); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Tasks returns a copy of the task slice.
func (d *Day) Tasks() []Scheduled {
	return slices.Clone(d.tasks)
}

// AddTask adds a task to the day, maintaining sorted order by start time.
// Returns ErrTimeBlockOverlap if the task overlaps with an existing task.
func (d *Day) AddTask(t Scheduled) error {
	if !sameDay(t.ScheduledStart, d.Date) {
		return fmt.Errorf("task %q starts on %s, not %s",
			t.Title, t.ScheduledStart.Format(DateLayout), d.Date.Format(DateLayout))
	}
	if overlap, ok := d.FindOverlappingTask(t.ScheduledStart, t.ScheduledEnd); ok {
		return fmt.Errorf("%w: %q (%s-%s) conflicts with %q (%s-%s)",
			ErrTimeBlockOverlap,
			t.Title, t.ScheduledStart.Format("15:04"), t.ScheduledEnd.Format("15:04"),
			overlap.Title, overlap.ScheduledStart.Format("15:04"), overlap.ScheduledEnd.Format("15:04"),
		)
	}

	d.tasks = append(d.tasks, t)
	slices.SortStableFunc(d.tasks, func(a, b Scheduled) int {
		return a.ScheduledStart.Compare(b.ScheduledStart)
	})

	return nil
}

// FindOverlappingTask returns the first task that overlaps with the given interval.
func (d *Day) FindOverlappingTask(start, end time.Time) (Scheduled, bool) {
	for _, t := range d.tasks {
		if start.Before(t.ScheduledEnd) && t.ScheduledStart.Before(end) {
			return t, true
		}
	}
	return Scheduled{}, false
}

// HasOverlap returns true if any task overlaps with the given interval.
func (d *Day) HasOverlap(start, end time.Time) bool {
	_, ok := d.FindOverlappingTask(start, end)
	return ok
}

// RemoveTask removes a task from the day by ID.
// Returns false if not found.
func (d *Day) RemoveTask(id string) bool {
	for i, t := range d.tasks {
		if t.ID == id {
			d.tasks = slices.Delete(d.tasks, i, i+1)
			return true
		}
	}
	return false
}

// Len returns the number of tasks in the day.
func (d *Day) Len() int {
	return len(d.tasks)
}

// DayStats holds statistics for a single day.
type DayStats struct {
	PlannedMinutes int
	DoneMinutes    int
	Tasks          int
	DoneTasks      int
	AutoScheduled  int
}

// DonePercent returns the percentage of planned time already completed.
func (s DayStats) DonePercent() int {
	if s.PlannedMinutes == 0 {
		return 0
	}
	return (s.DoneMinutes * 100) / s.PlannedMinutes
}

// Stats calculates statistics for the day.
func (d *Day) Stats() DayStats {
	var stats DayStats
	for _, t := range d.tasks {
		stats.Tasks++
		stats.PlannedMinutes += t.Minutes()
		if t.IsDone() {
			stats.DoneTasks++
			stats.DoneMinutes += t.Minutes()
		}
		if t.AutoScheduled {
			stats.AutoScheduled++
		}
	}
	return stats
}

// GroupByDay distributes tasks into chronologically ordered days.
// Overlapping tasks are kept; grouping does not enforce the no-overlap rule.
func GroupByDay(tasks []Scheduled) []*Day {
	byKey := make(map[string]*Day)
	var keys []string
	for _, t := range tasks {
		key := t.ScheduledStart.Format(DateLayout)
		d, ok := byKey[key]
		if !ok {
			d = NewDay(t.ScheduledStart)
			byKey[key] = d
			keys = append(keys, key)
		}
		d.tasks = append(d.tasks, t)
	}
	slices.Sort(keys)

	days := make([]*Day, 0, len(keys))
	for _, key := range keys {
		d := byKey[key]
		slices.SortStableFunc(d.tasks, func(a, b Scheduled) int {
			return a.ScheduledStart.Compare(b.ScheduledStart)
		})
		days = append(days, d)
	}
	return days
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
