package dwplanner

import (
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/stint/internal/dateutil"
	"github.com/javiermolinar/stint/internal/task"
)

// ValidationError represents a single validation error for an extracted task.
type ValidationError struct {
	TaskIndex int    // Index of the task in the input slice
	Field     string // JSON field name, or "id" for duplicates
	Message   string // Human-readable error message
}

// String returns a formatted error message.
func (e ValidationError) String() string {
	return fmt.Sprintf("Task %d: %s - %s", e.TaskIndex, e.Field, e.Message)
}

// ValidationResult contains the result of validating extracted tasks.
type ValidationResult struct {
	Valid  bool              // True if all tasks are valid
	Errors []ValidationError // Empty if Valid is true
	Tasks  []task.Task       // Input with defaults applied and dates normalized
}

// FormatErrors returns the errors as a feedback message for the LLM.
func (r ValidationResult) FormatErrors() string {
	if len(r.Errors) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Your response had these errors:\n")
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "- %s\n", e.String())
	}
	sb.WriteString("\nPlease correct these issues and respond again with valid JSON.")
	return sb.String()
}

// Validator checks extracted tasks before they reach the scheduling engine.
type Validator struct {
	now time.Time // reference for relative dates
}

// NewValidator creates a Validator resolving relative dates against now.
func NewValidator(now time.Time) *Validator {
	return &Validator{now: now}
}

// Validate checks every task and normalizes what it can:
// - title, duration and importance ranges
// - context, energy and flexibility enums (empty means default)
// - requested date, normalized to YYYY-MM-DD
// - deadline in HH:MM format
// - IDs unique within the batch
func (v *Validator) Validate(tasks []task.Task) ValidationResult {
	result := ValidationResult{Tasks: make([]task.Task, 0, len(tasks))}
	seen := make(map[string]int)

	for i, t := range tasks {
		t = t.WithDefaults()
		t.Title = strings.TrimSpace(t.Title)
		fail := func(field, format string, args ...any) {
			result.Errors = append(result.Errors, ValidationError{
				TaskIndex: i,
				Field:     field,
				Message:   fmt.Sprintf(format, args...),
			})
		}

		if t.Title == "" {
			fail("title", "must not be empty")
		}
		if t.DurationMinutes <= 0 {
			fail("duration_minutes", "%d is invalid (must be a positive number of minutes)", t.DurationMinutes)
		}
		if t.Importance < 1 || t.Importance > 5 {
			fail("importance", "%d is invalid (must be between 1 and 5)", t.Importance)
		}
		if !t.Context.Valid() {
			fail("context", "'%s' is invalid (must be phone, pc, home, outside or any)", t.Context)
		}
		if !t.Energy.Valid() {
			fail("energy", "'%s' is invalid (must be low, medium or high)", t.Energy)
		}
		if !t.Flexibility.Valid() {
			fail("flexibility", "'%s' is invalid (must be fixed or flexible)", t.Flexibility)
		}

		if t.HasDesiredDate() {
			normalized, err := dateutil.NormalizeDate(t.DesiredDate, v.now)
			if err != nil {
				fail("date", "'%s' is invalid (must be YYYY-MM-DD)", t.DesiredDate)
			} else {
				t.DesiredDate = normalized
			}
		}

		if t.Deadline != "" {
			if err := task.ValidateClock(t.Deadline); err != nil {
				fail("deadline", "'%s' is invalid (must be HH:MM format, 00:00-23:59)", t.Deadline)
			}
		}

		if t.ID != "" {
			if first, dup := seen[t.ID]; dup {
				fail("id", "'%s' is already used by task %d", t.ID, first)
			} else {
				seen[t.ID] = i
			}
		}

		result.Tasks = append(result.Tasks, t)
	}

	result.Valid = len(result.Errors) == 0
	return result
}
