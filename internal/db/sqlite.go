// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/stint/internal/logger"
	"github.com/javiermolinar/stint/internal/task"
)

// ErrMissingID is returned when a task without an ID is written.
var ErrMissingID = errors.New("task id is required")

const timestampLayout = "2006-01-02T15:04:05Z"

// SQLite implements task.Store using SQLite.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ task.Store = (*SQLite)(nil)

// New creates a new SQLite store and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

const upsertQuery = `
	INSERT INTO tasks (
		id, title, duration_minutes, importance, context, energy, flexibility,
		desired_date, deadline, scheduled_date, scheduled_start, scheduled_end,
		auto_scheduled, status, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title            = excluded.title,
		duration_minutes = excluded.duration_minutes,
		importance       = excluded.importance,
		context          = excluded.context,
		energy           = excluded.energy,
		flexibility      = excluded.flexibility,
		desired_date     = excluded.desired_date,
		deadline         = excluded.deadline,
		scheduled_date   = excluded.scheduled_date,
		scheduled_start  = excluded.scheduled_start,
		scheduled_end    = excluded.scheduled_end,
		auto_scheduled   = excluded.auto_scheduled,
		updated_at       = excluded.updated_at
`

// UpsertScheduled inserts or merges scheduled tasks in one transaction.
// New rows take the task status, todo when unset. Existing rows keep theirs.
func (s *SQLite) UpsertScheduled(ctx context.Context, tasks []task.Scheduled) error {
	if len(tasks) == 0 {
		return nil
	}

	for _, t := range tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("%w: %q", ErrMissingID, t.Title)
		}
		if err := t.ValidateSchedule(); err != nil {
			return fmt.Errorf("task %s: %w", t.ID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	stamp := formatTimestamp(s.now())
	for _, t := range tasks {
		t.Task = t.WithDefaults()
		status := t.Status
		if status == "" {
			status = task.StatusTodo
		}

		_, err := stmt.ExecContext(ctx,
			t.ID,
			t.Title,
			t.DurationMinutes,
			t.Importance,
			t.Context,
			t.Energy,
			t.Flexibility,
			t.DesiredDate,
			t.Deadline,
			t.ScheduledStart.Format(task.DateLayout),
			formatTimestamp(t.ScheduledStart),
			formatTimestamp(t.ScheduledEnd),
			t.AutoScheduled,
			status,
			stamp,
			stamp,
		)
		if err != nil {
			return fmt.Errorf("upserting task %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	logger.Debug("tasks upserted", "count", len(tasks))
	return nil
}

const selectColumns = `
	SELECT id, title, duration_minutes, importance, context, energy, flexibility,
	       desired_date, deadline, scheduled_start, scheduled_end, auto_scheduled, status
	FROM tasks
`

// GetScheduled retrieves a scheduled task by ID.
func (s *SQLite) GetScheduled(ctx context.Context, id string) (*task.Scheduled, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)

	t, err := scanScheduled(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return &t, nil
}

// ListScheduledByDateRange returns tasks whose start day falls within the
// date range (inclusive), ordered by start time.
func (s *SQLite) ListScheduledByDateRange(ctx context.Context, start, end time.Time) ([]task.Scheduled, error) {
	query := selectColumns + `
		WHERE scheduled_date >= ? AND scheduled_date <= ?
		ORDER BY scheduled_start, id
	`

	rows, err := s.db.QueryContext(ctx, query, start.Format(task.DateLayout), end.Format(task.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Scheduled
	for rows.Next() {
		t, err := scanScheduled(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTimes moves a task to a new interval. The duration is kept in sync
// with the new interval.
func (s *SQLite) UpdateTimes(ctx context.Context, id string, start, end time.Time) error {
	if !end.After(start) {
		return task.ErrEndBeforeStart
	}

	query := `
		UPDATE tasks
		SET scheduled_date = ?, scheduled_start = ?, scheduled_end = ?,
		    duration_minutes = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		start.Format(task.DateLayout),
		formatTimestamp(start),
		formatTimestamp(end),
		int(end.Sub(start)/time.Minute),
		formatTimestamp(s.now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating task times: %w", err)
	}
	return requireRow(result, id)
}

// SetStatus updates the status of a task.
func (s *SQLite) SetStatus(ctx context.Context, id string, status task.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", task.ErrInvalidStatus, status)
	}

	query := `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, status, formatTimestamp(s.now()), id)
	if err != nil {
		return fmt.Errorf("setting task status: %w", err)
	}
	return requireRow(result, id)
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduled(r rowScanner) (task.Scheduled, error) {
	var (
		t          task.Scheduled
		start, end string
	)

	err := r.Scan(
		&t.ID,
		&t.Title,
		&t.DurationMinutes,
		&t.Importance,
		&t.Context,
		&t.Energy,
		&t.Flexibility,
		&t.DesiredDate,
		&t.Deadline,
		&start,
		&end,
		&t.AutoScheduled,
		&t.Status,
	)
	if err != nil {
		return task.Scheduled{}, err
	}

	if t.ScheduledStart, err = parseTimestamp(start); err != nil {
		return task.Scheduled{}, fmt.Errorf("parsing scheduled start: %w", err)
	}
	if t.ScheduledEnd, err = parseTimestamp(end); err != nil {
		return task.Scheduled{}, fmt.Errorf("parsing scheduled end: %w", err)
	}
	return t, nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp reads a stored instant back in the local timezone,
// matching how the CLI builds its dates.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{timestampLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %s", s)
}
