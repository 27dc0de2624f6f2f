// Package scheduler assigns estimated-duration tasks to free time inside a
// multi-day work-hour horizon.
//
// The engine is a greedy heuristic: tasks are ordered (dated first, then by
// importance, then longest first) and each one takes the first free block
// large enough to hold it. Packing is not optimal and is not meant to be.
package scheduler

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/javiermolinar/stint/internal/logger"
	"github.com/javiermolinar/stint/internal/task"
)

// Configuration errors.
var (
	ErrInvalidTime    = errors.New("work hours must be in HH:MM format")
	ErrWindowOrder    = errors.New("work start must be before work end")
	ErrInvalidHorizon = errors.New("days to schedule must be positive")
)

// Settings configures the scheduling horizon.
type Settings struct {
	WorkStart      string    // "HH:MM"
	WorkEnd        string    // "HH:MM"
	DaysToSchedule int       // horizon length in days
	BaseDate       time.Time // first horizon day; its location defines the calendar
}

// Validate checks the settings before any block generation.
func (s Settings) Validate() error {
	if err := task.ValidateClock(s.WorkStart); err != nil {
		return fmt.Errorf("%w: work start %q", ErrInvalidTime, s.WorkStart)
	}
	if err := task.ValidateClock(s.WorkEnd); err != nil {
		return fmt.Errorf("%w: work end %q", ErrInvalidTime, s.WorkEnd)
	}
	if task.TimeToMinutes(s.WorkStart) >= task.TimeToMinutes(s.WorkEnd) {
		return fmt.Errorf("%w: %s >= %s", ErrWindowOrder, s.WorkStart, s.WorkEnd)
	}
	if s.DaysToSchedule <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidHorizon, s.DaysToSchedule)
	}
	return nil
}

// Placement is the terminal state of one task after a scheduling pass.
type Placement string

const (
	PlacedRequested Placement = "requested" // on its desired day
	PlacedFallback  Placement = "fallback"  // desired day full, moved elsewhere
	PlacedFlexible  Placement = "flexible"  // no usable desired day
	Dropped         Placement = "dropped"   // no block large enough
)

// Warning records a task that could not be placed.
type Warning struct {
	Task   task.Task
	Reason string
}

// String returns a human-readable warning.
func (w Warning) String() string {
	return fmt.Sprintf("could not place %q (%d min): %s", w.Task.Title, w.Task.DurationMinutes, w.Reason)
}

// Result is the outcome of one scheduling pass.
type Result struct {
	Scheduled  []task.Scheduled
	Warnings   []Warning
	Placements map[string]Placement // keyed by task ID, IDs only
}

// Dropped returns the tasks that could not be placed.
func (r *Result) Dropped() []task.Task {
	out := make([]task.Task, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		out = append(out, w.Task)
	}
	return out
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the function used for "now". Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine places tasks into free time. It holds only immutable configuration,
// so one engine may serve sequential calls and separate engines may run in parallel.
type Engine struct {
	settings    Settings
	constraints []Constraint
	workStart   int // minutes since midnight
	workEnd     int
	now         func() time.Time
}

// New creates an engine, validating settings first. The constraint slice is copied.
func New(settings Settings, constraints []Constraint, opts ...Option) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduling settings: %w", err)
	}

	e := &Engine{
		settings:    settings,
		constraints: slices.Clone(constraints),
		workStart:   task.TimeToMinutes(settings.WorkStart),
		workEnd:     task.TimeToMinutes(settings.WorkEnd),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Settings returns the engine settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// ScheduleTasks places tasks and returns the scheduled ones in placement order.
// Tasks that fit nowhere are left out and reported in Result.Warnings.
func (e *Engine) ScheduleTasks(tasks []task.Task) *Result {
	blocks := e.FreeBlocks()
	horizon := e.Horizon()

	result := &Result{
		Scheduled:  make([]task.Scheduled, 0, len(tasks)),
		Placements: make(map[string]Placement, len(tasks)),
	}

	for _, t := range OrderTasks(tasks) {
		scheduled, placement := e.place(t, blocks, horizon)
		if t.ID != "" {
			result.Placements[t.ID] = placement
		}

		if placement == Dropped {
			reason := "larger than every free block in the horizon"
			if t.DurationMinutes <= 0 {
				reason = "duration must be positive"
			}
			w := Warning{Task: t, Reason: reason}
			result.Warnings = append(result.Warnings, w)
			logger.Warn("task dropped", "title", t.Title, "duration", t.DurationMinutes, "date", t.DesiredDate)
			continue
		}

		logger.Debug("task placed",
			"title", t.Title,
			"start", scheduled.ScheduledStart.Format(time.RFC3339),
			"placement", placement,
		)
		result.Scheduled = append(result.Scheduled, scheduled)
	}

	return result
}

// place runs first-fit for one task, falling back to the whole horizon when
// the requested day is full.
func (e *Engine) place(t task.Task, blocks map[Day][]*FreeBlock, horizon []Day) (task.Scheduled, Placement) {
	// A non-positive duration would grow the block it is placed in.
	if t.DurationMinutes <= 0 {
		return task.Scheduled{}, Dropped
	}

	day, dated := desiredDay(t)
	pinned := dated && slices.Contains(horizon, day)

	candidates := horizon
	if pinned {
		candidates = []Day{day}
	}

	if block := firstFit(blocks, candidates, t.DurationMinutes); block != nil {
		if pinned {
			return assemble(t, block, false), PlacedRequested
		}
		// A well-formed date outside the horizon still reports AutoScheduled=false.
		return assemble(t, block, !dated), PlacedFlexible
	}

	if pinned {
		if block := firstFit(blocks, horizon, t.DurationMinutes); block != nil {
			return assemble(t, block, true), PlacedFallback
		}
	}

	return task.Scheduled{}, Dropped
}

// firstFit returns the first block, in day then time order, with room for minutes.
func firstFit(blocks map[Day][]*FreeBlock, days []Day, minutes int) *FreeBlock {
	for _, day := range days {
		for _, b := range blocks[day] {
			if b.Fits(minutes) {
				return b
			}
		}
	}
	return nil
}

func assemble(t task.Task, block *FreeBlock, auto bool) task.Scheduled {
	start, end := block.consume(t.DurationMinutes)
	return task.Scheduled{
		Task:           t,
		ScheduledStart: start,
		ScheduledEnd:   end,
		AutoScheduled:  auto,
	}
}
