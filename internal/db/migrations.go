package db

import "fmt"

// migrate runs database migrations. Instants are stored as UTC RFC3339 text
// so that lexical order matches chronological order.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL CHECK(duration_minutes > 0),
			importance       INTEGER NOT NULL CHECK(importance BETWEEN 1 AND 5),
			context          TEXT NOT NULL DEFAULT 'any',
			energy           TEXT NOT NULL DEFAULT 'medium',
			flexibility      TEXT NOT NULL DEFAULT 'flexible',
			desired_date     TEXT NOT NULL DEFAULT '',
			deadline         TEXT NOT NULL DEFAULT '',
			scheduled_date   TEXT NOT NULL,
			scheduled_start  TEXT NOT NULL,
			scheduled_end    TEXT NOT NULL,
			auto_scheduled   INTEGER NOT NULL DEFAULT 0,
			status           TEXT NOT NULL DEFAULT 'todo' CHECK(status IN ('todo', 'done')),
			created_at       TEXT NOT NULL,
			updated_at       TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_scheduled ON tasks(scheduled_date, scheduled_start);
		CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}

	return nil
}
