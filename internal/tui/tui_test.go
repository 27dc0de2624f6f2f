package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/stint/internal/db"
	"github.com/javiermolinar/stint/internal/task"
	"github.com/javiermolinar/stint/internal/timeline"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.Local)
}

func scheduled(id, title string, start time.Time, minutes int, auto bool) task.Scheduled {
	return task.Scheduled{
		Task: task.Task{
			ID:              id,
			Title:           title,
			DurationMinutes: minutes,
			Importance:      3,
		}.WithDefaults(),
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Duration(minutes) * time.Minute),
		AutoScheduled:  auto,
	}
}

// newTimeline opens a three day timeline from Monday 2026-03-02 with the
// clock on Monday morning.
func newTimeline(t *testing.T) (Model, *db.SQLite) {
	t.Helper()

	store, err := db.New(filepath.Join(t.TempDir(), "stint.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	err = store.UpsertScheduled(context.Background(), []task.Scheduled{
		scheduled("report", "Write report", at(2, 9, 0), 120, true),
		scheduled("email", "Answer email", at(2, 11, 0), 30, false),
		scheduled("gym", "Gym", at(3, 18, 0), 60, false),
	})
	if err != nil {
		t.Fatalf("UpsertScheduled() error: %v", err)
	}

	m := New(timeline.NewService(store), at(2, 0, 0), 3, WithClock(func() time.Time { return at(2, 8, 0) }))
	return run(m, m.Init()), store
}

// run executes cmd and feeds every resulting message back until none is left.
func run(m Model, cmd tea.Cmd) Model {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			break
		}
		updated, next := m.Update(msg)
		m = updated.(Model)
		cmd = next
	}
	return m
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, cmd := m.Update(msg)
		m = run(updated.(Model), cmd)
	}
	return m
}

func getTask(t *testing.T, store *db.SQLite, id string) *task.Scheduled {
	t.Helper()
	s, err := store.GetScheduled(context.Background(), id)
	if err != nil {
		t.Fatalf("GetScheduled(%s) error: %v", id, err)
	}
	return s
}

func TestTimeline_LoadsEveryDay(t *testing.T) {
	m, _ := newTimeline(t)

	if len(m.agenda) != 3 {
		t.Fatalf("got %d days, want 3", len(m.agenda))
	}
	if m.agenda[2].Len() != 0 {
		t.Errorf("Wednesday should be empty, got %d tasks", m.agenda[2].Len())
	}
	if m.day != 0 {
		t.Errorf("cursor on day %d, want today (0)", m.day)
	}

	view := m.View()
	for _, want := range []string{"Monday 02 Mar 2026 (today)", "09:00-11:00  Write report  2h", "[auto]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTimeline_StartsOnTodayWhenInRange(t *testing.T) {
	m := New(nil, at(2, 0, 0), 3, WithClock(func() time.Time { return at(3, 15, 0) }))
	if m.day != 1 {
		t.Errorf("cursor on day %d, want 1", m.day)
	}

	m = New(nil, at(2, 0, 0), 3, WithClock(func() time.Time { return at(10, 15, 0) }))
	if m.day != 0 {
		t.Errorf("cursor on day %d, want 0 when today is out of range", m.day)
	}
}

func TestTimeline_Navigation(t *testing.T) {
	m, _ := newTimeline(t)

	tests := []struct {
		key      string
		wantDay  int
		wantTask int
	}{
		{"j", 0, 1},
		{"j", 0, 1}, // last task
		{"k", 0, 0},
		{"l", 1, 0},
		{"l", 2, 0},
		{"l", 2, 0}, // last day
		{"h", 1, 0},
	}
	for i, tt := range tests {
		m = press(m, tt.key)
		if m.day != tt.wantDay || m.selected != tt.wantTask {
			t.Errorf("step %d (%s): day %d task %d, want day %d task %d",
				i, tt.key, m.day, m.selected, tt.wantDay, tt.wantTask)
		}
	}
}

func TestTimeline_MoveToNextDay(t *testing.T) {
	m, store := newTimeline(t)

	m = press(m, "m", "j", "j", "l", "enter")

	if m.mode != ModeNormal {
		t.Errorf("mode = %s, want normal", m.mode)
	}
	report := getTask(t, store, "report")
	if !report.ScheduledStart.Equal(at(3, 9, 30)) || !report.ScheduledEnd.Equal(at(3, 11, 30)) {
		t.Errorf("report at %v-%v, want Tue 09:30-11:30", report.ScheduledStart, report.ScheduledEnd)
	}
	if s, ok := m.selectedTask(); !ok || s.ID != "report" || m.day != 1 {
		t.Errorf("cursor should follow the moved task, got day %d task %+v", m.day, s)
	}
	if !strings.Contains(m.statusMsg, "Moved") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestTimeline_MovePreviewAndCancel(t *testing.T) {
	m, store := newTimeline(t)

	m = press(m, "m", "J")
	if view := m.View(); !strings.Contains(view, "→ 10:00-12:00") {
		t.Errorf("expected a preview one hour later:\n%s", view)
	}

	m = press(m, "l")
	if view := m.View(); !strings.Contains(view, "→ Tue 03 10:00-12:00") {
		t.Errorf("expected the preview to name the new day:\n%s", view)
	}

	m = press(m, "esc")
	if m.mode != ModeNormal {
		t.Errorf("mode = %s, want normal", m.mode)
	}
	if report := getTask(t, store, "report"); !report.ScheduledStart.Equal(at(2, 9, 0)) {
		t.Errorf("cancelled move was stored: %v", report.ScheduledStart)
	}
}

func TestTimeline_MoveReportsOverlap(t *testing.T) {
	m, store := newTimeline(t)

	// Email 11:00 -> 10:00 lands inside the report.
	m = press(m, "j", "m", "K", "enter")

	if email := getTask(t, store, "email"); !email.ScheduledStart.Equal(at(2, 10, 0)) {
		t.Errorf("email at %v, want 10:00", email.ScheduledStart)
	}
	if !strings.Contains(m.statusMsg, `overlaps "Write report"`) {
		t.Errorf("status = %q, want an overlap notice", m.statusMsg)
	}
}

func TestTimeline_SnoozeDoneAccept(t *testing.T) {
	m, store := newTimeline(t)

	m = press(m, "s")
	report := getTask(t, store, "report")
	if !report.ScheduledStart.Equal(at(3, 9, 0)) {
		t.Errorf("snoozed report at %v, want Tue 09:00", report.ScheduledStart)
	}
	if s, ok := m.selectedTask(); !ok || s.ID != "report" {
		t.Fatalf("cursor should follow the snoozed task, got %+v", s)
	}

	m = press(m, "d")
	if got := getTask(t, store, "report").Status; got != task.StatusDone {
		t.Errorf("status = %s, want done", got)
	}

	m = press(m, "a")
	if getTask(t, store, "report").AutoScheduled {
		t.Error("accepted task is still auto-scheduled")
	}

	m = press(m, "a")
	if m.statusMsg != "Already placed by hand" {
		t.Errorf("status = %q", m.statusMsg)
	}

	m = press(m, "d")
	if got := getTask(t, store, "report").Status; got != task.StatusTodo {
		t.Errorf("status = %s, want todo after a second toggle", got)
	}
}

func TestTimeline_ErrorStatus(t *testing.T) {
	m, _ := newTimeline(t)

	updated, _ := m.Update(ErrMsg{Err: errors.New("database is locked")})
	m = updated.(Model)

	if view := m.View(); !strings.Contains(view, "Error: database is locked") {
		t.Errorf("view missing error:\n%s", view)
	}
}

func TestTimeline_HelpFollowsMode(t *testing.T) {
	m, _ := newTimeline(t)

	if view := m.View(); !strings.Contains(view, "snooze") {
		t.Errorf("normal help missing snooze:\n%s", view)
	}
	m = press(m, "m")
	if view := m.View(); !strings.Contains(view, "+15m") || strings.Contains(view, "snooze") {
		t.Errorf("move help should list step keys only:\n%s", view)
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{15, "15m"},
		{60, "1h"},
		{90, "1h30m"},
		{125, "2h05m"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.minutes); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
