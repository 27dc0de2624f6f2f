package task

import (
	"context"
	"time"
)

// Store defines the storage interface for scheduled tasks.
type Store interface {
	// UpsertScheduled inserts or merges scheduled tasks keyed by ID.
	// New records start as todo; an existing record keeps its status.
	UpsertScheduled(ctx context.Context, tasks []Scheduled) error

	// GetScheduled retrieves a scheduled task by ID.
	// Returns ErrTaskNotFound if no task has that ID.
	GetScheduled(ctx context.Context, id string) (*Scheduled, error)

	// ListScheduledByDateRange returns tasks starting within the date range (inclusive),
	// ordered by start time.
	ListScheduledByDateRange(ctx context.Context, start, end time.Time) ([]Scheduled, error)

	// UpdateTimes moves a task to a new interval.
	UpdateTimes(ctx context.Context, id string, start, end time.Time) error

	// SetStatus updates the status of a task.
	SetStatus(ctx context.Context, id string, status Status) error

	// Close releases any resources held by the store.
	Close() error
}
