package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/stint/internal/config"
	"github.com/javiermolinar/stint/internal/db"
	"github.com/javiermolinar/stint/internal/task"
)

func TestDecodeTasks(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "array", input: `[{"title": "a", "duration_minutes": 30, "importance": 3}]`, want: 1},
		{name: "object", input: `{"tasks": [{"title": "a"}, {"title": "b"}]}`, want: 2},
		{name: "leading whitespace", input: "\n  [ ]", want: 0},
		{name: "empty", input: "  ", wantErr: true},
		{name: "not json", input: "title: a", wantErr: true},
		{name: "wrong shape", input: `[1, 2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := decodeTasks(strings.NewReader(tt.input))
			if tt.wantErr {
				if !errors.Is(err, errInvalidTasks) {
					t.Errorf("expected errInvalidTasks, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tasks) != tt.want {
				t.Errorf("got %d tasks, want %d", len(tasks), tt.want)
			}
		})
	}
}

func TestReadTaskFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte(`[{"title": "from file"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	stdin := strings.NewReader(`[{"title": "from stdin"}]`)

	tasks, err := readTaskFile(stdin, []string{path})
	if err != nil {
		t.Fatalf("readTaskFile() error: %v", err)
	}
	if tasks[0].Title != "from file" {
		t.Errorf("Title = %q, want from file", tasks[0].Title)
	}

	tasks, err = readTaskFile(stdin, []string{"-"})
	if err != nil {
		t.Fatalf("readTaskFile(-) error: %v", err)
	}
	if tasks[0].Title != "from stdin" {
		t.Errorf("Title = %q, want from stdin", tasks[0].Title)
	}

	if _, err := readTaskFile(stdin, []string{filepath.Join(t.TempDir(), "missing.json")}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func newTestApp(t *testing.T) (*App, *db.SQLite) {
	t.Helper()
	DisableColor()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Schedule.WorkStart = "09:00"
	cfg.Schedule.WorkEnd = "17:00"
	cfg.Schedule.DaysToSchedule = 3
	cfg.Storage.DBPath = filepath.Join(dir, "stint.db")
	cfg.Log.Dir = filepath.Join(dir, "logs")
	cfg.Calendar.Source = ""

	store, err := db.New(cfg.Storage.DBPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	app := NewApp(store, cfg)
	app.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local) }
	t.Cleanup(func() { _ = app.Close() })
	return app, store
}

func TestScheduleCommand_JSONAndSave(t *testing.T) {
	app, store := newTestApp(t)

	input := `[
  {"id": "report", "title": "Write report", "duration_minutes": 120, "importance": 5},
  {"id": "bank", "title": "Call the bank", "duration_minutes": 15, "importance": 3, "date": "2026-03-03"},
  {"id": "huge", "title": "Rewrite everything", "duration_minutes": 600, "importance": 1}
]`
	var out bytes.Buffer
	app.SetIO(strings.NewReader(input), &out)
	app.SetArgs([]string{"schedule", "--json", "--save", "--from", "2026-03-02"})

	if err := app.Execute(); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	var got scheduleOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(got.Scheduled) != 2 {
		t.Fatalf("expected 2 scheduled tasks, got %d", len(got.Scheduled))
	}
	if len(got.Dropped) != 1 || got.Dropped[0].Task.ID != "huge" {
		t.Errorf("Dropped = %+v", got.Dropped)
	}

	ctx := context.Background()
	bank, err := store.GetScheduled(ctx, "bank")
	if err != nil {
		t.Fatalf("GetScheduled(bank) error: %v", err)
	}
	if bank.ScheduledStart.Format(task.DateLayout) != "2026-03-03" {
		t.Errorf("bank scheduled on %v, want 2026-03-03", bank.ScheduledStart)
	}
	if bank.AutoScheduled {
		t.Error("bank was placed on its requested day and should not be auto-scheduled")
	}

	report, err := store.GetScheduled(ctx, "report")
	if err != nil {
		t.Fatalf("GetScheduled(report) error: %v", err)
	}
	if report.ScheduledStart.Hour() != 9 || !report.AutoScheduled {
		t.Errorf("report = %v auto=%v, want 09:00 auto", report.ScheduledStart, report.AutoScheduled)
	}

	if _, err := store.GetScheduled(ctx, "huge"); !errors.Is(err, task.ErrTaskNotFound) {
		t.Errorf("dropped task should not be saved, got %v", err)
	}
}

func TestScheduleCommand_FromToday(t *testing.T) {
	app, _ := newTestApp(t)
	clock := time.Date(2026, 3, 2, 15, 0, 0, 0, time.Local)
	app.now = func() time.Time { return clock }

	var out bytes.Buffer
	app.SetIO(strings.NewReader(`[{"id": "focus", "title": "Focus", "duration_minutes": 60, "importance": 3}]`), &out)
	app.SetArgs([]string{"schedule", "--json", "--from", "2026-03-02"})
	if err := app.Execute(); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	var got scheduleOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(got.Scheduled) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(got.Scheduled))
	}
	if start := got.Scheduled[0].ScheduledStart; !start.Equal(clock) {
		t.Errorf("focus starts at %v, want %v; the morning of today has passed", start, clock)
	}
}

func TestScheduleCommand_InvalidTasks(t *testing.T) {
	app, _ := newTestApp(t)

	app.SetIO(strings.NewReader(`[{"title": "", "duration_minutes": 30, "importance": 3}]`), &bytes.Buffer{})
	app.SetArgs([]string{"schedule"})

	if err := app.Execute(); !errors.Is(err, errInvalidTasks) {
		t.Errorf("expected errInvalidTasks, got %v", err)
	}
}

func TestTimelineCommands(t *testing.T) {
	app, store := newTestApp(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	s := scheduledAt("gym", "Gym", start, 60)
	s.AutoScheduled = true
	if err := store.UpsertScheduled(ctx, []task.Scheduled{s}); err != nil {
		t.Fatalf("UpsertScheduled() error: %v", err)
	}

	run := func(args ...string) {
		t.Helper()
		app.SetArgs(args)
		if err := app.Execute(); err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
	}

	run("move", "gym", "--by", "38")
	got, _ := store.GetScheduled(ctx, "gym")
	if !got.ScheduledStart.Equal(start.Add(45 * time.Minute)) {
		t.Errorf("after move start = %v, want 09:45", got.ScheduledStart)
	}

	run("snooze", "gym")
	got, _ = store.GetScheduled(ctx, "gym")
	if !got.ScheduledStart.Equal(start.AddDate(0, 0, 1).Add(45 * time.Minute)) {
		t.Errorf("after snooze start = %v", got.ScheduledStart)
	}

	run("done", "gym")
	got, _ = store.GetScheduled(ctx, "gym")
	if got.Status != task.StatusDone {
		t.Errorf("Status = %q, want done", got.Status)
	}

	run("accept", "gym")
	got, _ = store.GetScheduled(ctx, "gym")
	if got.AutoScheduled {
		t.Error("accept should clear AutoScheduled")
	}
	if got.Status != task.StatusDone {
		t.Errorf("accept should keep the status, got %q", got.Status)
	}
}

func TestMoveCommand_RequiresChange(t *testing.T) {
	app, _ := newTestApp(t)
	app.SetArgs([]string{"move", "gym"})
	if err := app.Execute(); err == nil {
		t.Error("expected error without --to or --by")
	}
}
