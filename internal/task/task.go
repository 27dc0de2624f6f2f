// Package task defines the core domain types for stint.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrEmptyTitle          = errors.New("title cannot be empty")
	ErrInvalidDuration     = errors.New("duration must be a positive number of minutes")
	ErrInvalidImportance   = errors.New("importance must be between 1 and 5")
	ErrInvalidContext      = errors.New("context must be one of phone, pc, home, outside, any")
	ErrInvalidEnergy       = errors.New("energy must be one of low, medium, high")
	ErrInvalidFlexibility  = errors.New("flexibility must be 'fixed' or 'flexible'")
	ErrInvalidTimeFormat   = errors.New("time must be in HH:MM format")
	ErrInvalidDesiredDate  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidStatus       = errors.New("status must be 'todo' or 'done'")
	ErrEndBeforeStart      = errors.New("end time must be after start time")
	ErrDurationMismatch    = errors.New("scheduled interval does not match duration")
	ErrMissingScheduleTime = errors.New("scheduled start and end are required")
)

// Domain errors.
var (
	ErrTimeBlockOverlap = errors.New("time block overlaps with existing task")
	ErrTaskNotFound     = errors.New("task not found")
)

// DateLayout is the canonical calendar date layout used for desired dates and day keys.
const DateLayout = "2006-01-02"

// Context is where a task can be done. Informational only.
type Context string

const (
	ContextPhone   Context = "phone"
	ContextPC      Context = "pc"
	ContextHome    Context = "home"
	ContextOutside Context = "outside"
	ContextAny     Context = "any"
)

// Valid returns true if the context is a known value.
func (c Context) Valid() bool {
	switch c {
	case ContextPhone, ContextPC, ContextHome, ContextOutside, ContextAny:
		return true
	default:
		return false
	}
}

// Energy is the mental or physical effort a task needs. Informational only.
type Energy string

const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

// Valid returns true if the energy level is a known value.
func (e Energy) Valid() bool {
	switch e {
	case EnergyLow, EnergyMedium, EnergyHigh:
		return true
	default:
		return false
	}
}

// Flexibility tells whether the task is bound to a precise time.
// It is carried through scheduling but not enforced.
type Flexibility string

const (
	FlexibilityFixed    Flexibility = "fixed"
	FlexibilityFlexible Flexibility = "flexible"
)

// Valid returns true if the flexibility is a known value.
func (f Flexibility) Valid() bool {
	return f == FlexibilityFixed || f == FlexibilityFlexible
}

// Status represents the progress of a scheduled task.
type Status string

const (
	StatusTodo Status = "todo"
	StatusDone Status = "done"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	return s == StatusTodo || s == StatusDone
}

// Task is an unscheduled unit of work with an estimated duration.
type Task struct {
	ID              string      `json:"id,omitempty" jsonschema:"description=Stable identifier; leave empty for new tasks"`
	Title           string      `json:"title" jsonschema:"description=Short clear title of the task"`
	DurationMinutes int         `json:"duration_minutes" jsonschema:"description=Estimated duration in minutes,minimum=1"`
	Importance      int         `json:"importance" jsonschema:"description=Importance from 1 (low) to 5 (critical),minimum=1,maximum=5"`
	Context         Context     `json:"context" jsonschema:"enum=phone,enum=pc,enum=home,enum=outside,enum=any"`
	Energy          Energy      `json:"energy" jsonschema:"enum=low,enum=medium,enum=high"`
	Flexibility     Flexibility `json:"flexibility" jsonschema:"enum=fixed,enum=flexible"`
	DesiredDate     string      `json:"date,omitempty" jsonschema:"description=Requested day in YYYY-MM-DD format if the text names one"`
	Deadline        string      `json:"deadline,omitempty" jsonschema:"description=Latest time of day in HH:MM format if the text names one"`
}

// HasDesiredDate returns true if the task requests a specific day.
func (t Task) HasDesiredDate() bool {
	return strings.TrimSpace(t.DesiredDate) != ""
}

// Duration returns the estimated duration.
func (t Task) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}

// Validate checks the task fields. DesiredDate must already be in canonical form.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if t.Importance < 1 || t.Importance > 5 {
		return ErrInvalidImportance
	}
	if !t.Context.Valid() {
		return fmt.Errorf("%w, got %q", ErrInvalidContext, t.Context)
	}
	if !t.Energy.Valid() {
		return fmt.Errorf("%w, got %q", ErrInvalidEnergy, t.Energy)
	}
	if !t.Flexibility.Valid() {
		return fmt.Errorf("%w, got %q", ErrInvalidFlexibility, t.Flexibility)
	}
	if t.HasDesiredDate() {
		if _, err := time.Parse(DateLayout, t.DesiredDate); err != nil {
			return fmt.Errorf("%w, got %q", ErrInvalidDesiredDate, t.DesiredDate)
		}
	}
	if t.Deadline != "" {
		if err := ValidateClock(t.Deadline); err != nil {
			return fmt.Errorf("deadline: %w", err)
		}
	}
	return nil
}

// WithDefaults fills the informational enums when they are empty.
func (t Task) WithDefaults() Task {
	if t.Context == "" {
		t.Context = ContextAny
	}
	if t.Energy == "" {
		t.Energy = EnergyMedium
	}
	if t.Flexibility == "" {
		t.Flexibility = FlexibilityFlexible
	}
	return t
}

// Scheduled is a task placed on the calendar.
type Scheduled struct {
	Task
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
	AutoScheduled  bool      `json:"auto_scheduled"`
	Status         Status    `json:"status,omitempty"`
}

// Date returns the calendar day the task starts on, in the start's location.
func (s Scheduled) Date() time.Time {
	return TruncateToDay(s.ScheduledStart)
}

// Minutes returns the scheduled length in minutes.
func (s Scheduled) Minutes() int {
	return int(s.ScheduledEnd.Sub(s.ScheduledStart) / time.Minute)
}

// IsDone returns true if the task has been completed.
func (s Scheduled) IsDone() bool {
	return s.Status == StatusDone
}

// OverlapsWith returns true if both tasks share time on the calendar.
func (s Scheduled) OverlapsWith(other Scheduled) bool {
	return s.ScheduledStart.Before(other.ScheduledEnd) && other.ScheduledStart.Before(s.ScheduledEnd)
}

// ValidateSchedule checks the scheduled interval against the task duration.
func (s Scheduled) ValidateSchedule() error {
	if s.ScheduledStart.IsZero() || s.ScheduledEnd.IsZero() {
		return ErrMissingScheduleTime
	}
	if !s.ScheduledEnd.After(s.ScheduledStart) {
		return ErrEndBeforeStart
	}
	if s.Minutes() != s.DurationMinutes {
		return fmt.Errorf("%w: %d minutes scheduled for a %d minute task",
			ErrDurationMismatch, s.Minutes(), s.DurationMinutes)
	}
	return nil
}

// TruncateToDay returns t with the time of day set to midnight in t's location.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
