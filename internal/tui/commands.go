package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/stint/internal/task"
	"github.com/javiermolinar/stint/internal/timeline"
)

// AgendaLoadedMsg is sent when the days are read from the store.
type AgendaLoadedMsg struct {
	Days []*task.Day
}

// ChangedMsg is sent after a task was edited.
type ChangedMsg struct {
	ID       string
	Status   string
	Conflict *task.Scheduled
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// LoadAgenda reads days consecutive days starting on from. Days without
// tasks are included so the timeline can step through them.
func LoadAgenda(svc *timeline.Service, from time.Time, days int) tea.Cmd {
	return func() tea.Msg {
		grouped, err := svc.Agenda(context.Background(), from, days)
		if err != nil {
			return ErrMsg{Err: err}
		}

		byKey := make(map[string]*task.Day, len(grouped))
		for _, d := range grouped {
			byKey[d.Date.Format(task.DateLayout)] = d
		}

		out := make([]*task.Day, 0, days)
		for i := range days {
			date := from.AddDate(0, 0, i)
			if d, ok := byKey[date.Format(task.DateLayout)]; ok {
				out = append(out, d)
				continue
			}
			out = append(out, task.NewDay(date))
		}
		return AgendaLoadedMsg{Days: out}
	}
}

// MoveTask moves a task to target (zero keeps its day) shifted by delta minutes.
func MoveTask(svc *timeline.Service, id string, target time.Time, delta int) tea.Cmd {
	return func() tea.Msg {
		change, err := svc.Move(context.Background(), id, target, delta)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return changed(change, "Moved")
	}
}

// SnoozeTask pushes a task back one day.
func SnoozeTask(svc *timeline.Service, id string) tea.Cmd {
	return func() tea.Msg {
		change, err := svc.Snooze(context.Background(), id)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return changed(change, "Snoozed")
	}
}

// ToggleDone flips a task between todo and done.
func ToggleDone(svc *timeline.Service, id string) tea.Cmd {
	return func() tea.Msg {
		status, err := svc.ToggleDone(context.Background(), id)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return ChangedMsg{ID: id, Status: fmt.Sprintf("Marked %s", status)}
	}
}

// AcceptTask keeps an automatic placement as if it had been chosen.
func AcceptTask(svc *timeline.Service, id string) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Accept(context.Background(), id); err != nil {
			return ErrMsg{Err: err}
		}
		return ChangedMsg{ID: id, Status: "Accepted"}
	}
}

func changed(change *timeline.Change, verb string) ChangedMsg {
	s := change.Task
	return ChangedMsg{
		ID:       s.ID,
		Status:   fmt.Sprintf("%s %q to %s", verb, s.Title, s.ScheduledStart.Format("Mon 02 Jan 15:04")),
		Conflict: change.Conflict,
	}
}
