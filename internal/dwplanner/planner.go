// Package dwplanner orchestrates planning: it extracts tasks from free text
// with the LLM, validates them, schedules them with the engine around
// calendar events and stored tasks, and saves the result.
package dwplanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/stint/internal/calendar"
	"github.com/javiermolinar/stint/internal/config"
	"github.com/javiermolinar/stint/internal/llm"
	"github.com/javiermolinar/stint/internal/logger"
	"github.com/javiermolinar/stint/internal/scheduler"
	"github.com/javiermolinar/stint/internal/task"
)

var (
	// ErrNothingToSave is returned when a plan with no scheduled task is saved.
	ErrNothingToSave = errors.New("plan has no scheduled tasks")

	// ErrNoStore is returned when an operation needs storage but none was given.
	ErrNoStore = errors.New("no task store configured")
)

// CalendarLoader reads busy time for the horizon.
type CalendarLoader func(ctx context.Context, source string, windowStart, windowEnd time.Time) ([]scheduler.Constraint, error)

// Option configures a Planner.
type Option func(*Planner)

// WithClock sets the function used for "now". Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

// WithCalendarLoader replaces calendar.Load.
func WithCalendarLoader(load CalendarLoader) Option {
	return func(p *Planner) {
		p.loadCalendar = load
	}
}

// Planner coordinates the extractor, the scheduling engine and the store.
type Planner struct {
	extractor    *llm.Extractor
	store        task.Store
	config       *config.Config
	now          func() time.Time
	loadCalendar CalendarLoader
}

// New creates a Planner. client may be nil when only Schedule and Save are
// used; store may be nil when nothing is persisted or read back.
func New(client llm.Client, cfg *config.Config, store task.Store, opts ...Option) *Planner {
	p := &Planner{
		store:        store,
		config:       cfg,
		now:          time.Now,
		loadCalendar: calendar.Load,
	}
	if client != nil {
		p.extractor = llm.NewExtractor(client)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ExtractResult contains the tasks read from free text.
type ExtractResult struct {
	Tasks     []task.Task
	Questions []string

	// Populated when retries are exhausted.
	ValidationErrors []ValidationError
}

// HasValidationErrors returns true if there are unresolved validation errors.
func (r *ExtractResult) HasValidationErrors() bool {
	return len(r.ValidationErrors) > 0
}

// ValidTasks returns the tasks without a validation error, in order.
func (r *ExtractResult) ValidTasks() []task.Task {
	if !r.HasValidationErrors() {
		return r.Tasks
	}
	invalid := make(map[int]bool, len(r.ValidationErrors))
	for _, ve := range r.ValidationErrors {
		invalid[ve.TaskIndex] = true
	}
	out := make([]task.Task, 0, len(r.Tasks))
	for i, t := range r.Tasks {
		if !invalid[i] {
			out = append(out, t)
		}
	}
	return out
}

// Extract turns free text into validated tasks. Invalid answers are sent back
// to the LLM with the errors, up to maxRetries times. When retries run out the
// last answer is returned with ValidationErrors populated.
func (p *Planner) Extract(ctx context.Context, input string, maxRetries int) (*ExtractResult, error) {
	if p.extractor == nil {
		return nil, errors.New("no LLM client configured")
	}

	if maxRetries < 0 {
		maxRetries = 0
	}

	now := p.now()
	messages := llm.BuildMessages(llm.ExtractRequest{Input: input, Now: now})
	validator := NewValidator(now)

	var (
		resp       *llm.ExtractResult
		validation ValidationResult
	)
	for attempt := 0; attempt <= maxRetries; attempt++ {
		var err error
		resp, err = p.extractor.ExtractWithMessages(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("LLM extraction (attempt %d): %w", attempt+1, err)
		}

		validation = validator.Validate(resp.Tasks)
		if validation.Valid {
			break
		}

		logger.Warn("extraction failed validation", "attempt", attempt+1, "errors", len(validation.Errors))
		if attempt < maxRetries {
			answer, err := json.Marshal(resp)
			if err != nil {
				return nil, fmt.Errorf("encoding answer for feedback: %w", err)
			}
			messages = append(messages,
				llm.Message{Role: llm.RoleAssistant, Content: string(answer)},
				llm.Message{Role: llm.RoleUser, Content: validation.FormatErrors()},
			)
		}
	}

	return &ExtractResult{
		Tasks:            AssignIDs(validation.Tasks),
		Questions:        resp.Questions,
		ValidationErrors: validation.Errors,
	}, nil
}

// AssignIDs gives every task without an ID a fresh UUID. The input is not modified.
func AssignIDs(tasks []task.Task) []task.Task {
	out := slices.Clone(tasks)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}

// PlanResult is a proposed schedule.
type PlanResult struct {
	*scheduler.Result

	Settings    scheduler.Settings
	Horizon     []scheduler.Day
	Constraints []scheduler.Constraint

	// Non-fatal problems met while gathering constraints.
	Notices []string
}

// Days groups the scheduled tasks by calendar day.
func (r *PlanResult) Days() []*task.Day {
	return task.GroupByDay(r.Scheduled)
}

// Schedule places tasks into the configured horizon starting on base's day.
// The planner clock, not base, decides how much of today is already gone.
// Calendar events and stored tasks of the horizon are busy time; stored
// tasks sharing an ID with an input task are being replanned and ignored.
func (p *Planner) Schedule(ctx context.Context, tasks []task.Task, base time.Time) (*PlanResult, error) {
	settings := p.config.SchedulerSettings(base)
	windowStart := settings.BaseDate
	windowEnd := windowStart.AddDate(0, 0, settings.DaysToSchedule)

	result := &PlanResult{Settings: settings}

	if p.config.HasCalendar() {
		events, err := p.loadCalendar(ctx, p.config.Calendar.Source, windowStart, windowEnd)
		if err != nil {
			logger.Warn("calendar unavailable", "source", p.config.Calendar.Source, "error", err)
			result.Notices = append(result.Notices, fmt.Sprintf("calendar ignored: %v", err))
		} else {
			result.Constraints = append(result.Constraints, events...)
		}
	}

	if p.store != nil {
		stored, err := p.storedConstraints(ctx, tasks, windowStart, windowEnd)
		if err != nil {
			return nil, err
		}
		result.Constraints = append(result.Constraints, stored...)
	}

	engine, err := scheduler.New(settings, result.Constraints, scheduler.WithClock(p.now))
	if err != nil {
		return nil, err
	}

	result.Result = engine.ScheduleTasks(tasks)
	result.Horizon = engine.Horizon()

	logger.Info("schedule computed",
		"tasks", len(tasks),
		"scheduled", len(result.Scheduled),
		"dropped", len(result.Warnings),
		"constraints", len(result.Constraints),
	)
	return result, nil
}

// storedConstraints turns already planned tasks into busy intervals.
func (p *Planner) storedConstraints(ctx context.Context, replanned []task.Task, windowStart, windowEnd time.Time) ([]scheduler.Constraint, error) {
	stored, err := p.store.ListScheduledByDateRange(ctx, windowStart, windowEnd.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("listing stored tasks: %w", err)
	}

	skip := make(map[string]bool, len(replanned))
	for _, t := range replanned {
		if t.ID != "" {
			skip[t.ID] = true
		}
	}

	constraints := make([]scheduler.Constraint, 0, len(stored))
	for _, s := range stored {
		if skip[s.ID] {
			continue
		}
		constraints = append(constraints, scheduler.Constraint{
			Start: s.ScheduledStart,
			End:   s.ScheduledEnd,
			Label: s.Title,
		})
	}
	return constraints, nil
}

// Save persists the scheduled tasks of a plan. Dropped tasks are not saved.
func (p *Planner) Save(ctx context.Context, result *PlanResult) error {
	if p.store == nil {
		return ErrNoStore
	}
	if result == nil || result.Result == nil || len(result.Scheduled) == 0 {
		return ErrNothingToSave
	}

	toSave := make([]task.Scheduled, len(result.Scheduled))
	for i, s := range result.Scheduled {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if s.Status == "" {
			s.Status = task.StatusTodo
		}
		toSave[i] = s
	}

	if err := p.store.UpsertScheduled(ctx, toSave); err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}
	return nil
}
