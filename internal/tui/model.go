// Package tui provides the interactive timeline of scheduled tasks.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/stint/internal/task"
	"github.com/javiermolinar/stint/internal/timeline"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeMove        // Previewing a move; nothing is stored until confirmed
)

func (m Mode) String() string {
	if m == ModeMove {
		return "move"
	}
	return "normal"
}

// Model is the timeline model. It shows one day at a time.
type Model struct {
	service *timeline.Service
	from    time.Time // first day shown
	days    int
	now     func() time.Time

	// State
	agenda   []*task.Day // one entry per day, empty days included
	day      int         // index into agenda
	selected int         // index into the day's tasks
	mode     Mode
	loading  bool
	follow   string // task to select after the next reload

	// Pending move, applied with timeline.Move on confirm
	moveDelta int // minutes
	moveDays  int

	keys   keyMap
	help   help.Model
	styles Styles

	width  int
	height int

	statusMsg  string
	statusTime time.Time
	err        error
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithClock sets the function used for "now". Defaults to time.Now.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// New creates a timeline over days consecutive days starting on from.
// The cursor starts on today when today is in range.
func New(service *timeline.Service, from time.Time, days int, opts ...ModelOption) Model {
	if days <= 0 {
		days = 1
	}
	m := Model{
		service: service,
		from:    task.TruncateToDay(from),
		days:    days,
		now:     time.Now,
		loading: true,
		keys:    defaultKeyMap(),
		help:    help.New(),
		styles:  DefaultStyles(),
	}
	for _, opt := range opts {
		opt(&m)
	}

	today := task.TruncateToDay(m.now().In(m.from.Location()))
	for i := range days {
		if m.from.AddDate(0, 0, i).Equal(today) {
			m.day = i
		}
	}
	return m
}

// Init loads the agenda.
func (m Model) Init() tea.Cmd {
	return LoadAgenda(m.service, m.from, m.days)
}

// Run starts the timeline in the alternate screen.
func Run(service *timeline.Service, from time.Time, days int) error {
	p := tea.NewProgram(New(service, from, days), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) currentTasks() []task.Scheduled {
	if m.day < 0 || m.day >= len(m.agenda) {
		return nil
	}
	return m.agenda[m.day].Tasks()
}

func (m Model) selectedTask() (task.Scheduled, bool) {
	tasks := m.currentTasks()
	if m.selected < 0 || m.selected >= len(tasks) {
		return task.Scheduled{}, false
	}
	return tasks[m.selected], true
}

// movePreview is where the selected task lands if the pending move is confirmed.
func (m Model) movePreview() (task.Scheduled, bool) {
	s, ok := m.selectedTask()
	if !ok {
		return task.Scheduled{}, false
	}
	return timeline.Move(s, m.moveTarget(s), m.moveDelta), true
}

func (m Model) moveTarget(s task.Scheduled) time.Time {
	if m.moveDays == 0 {
		return time.Time{}
	}
	return s.Date().AddDate(0, 0, m.moveDays)
}

func (m *Model) clampSelection() {
	m.day = min(max(m.day, 0), max(len(m.agenda)-1, 0))
	m.selected = min(max(m.selected, 0), max(len(m.currentTasks())-1, 0))
}

// selectTask points the cursor at id when it is loaded.
func (m *Model) selectTask(id string) bool {
	for d, day := range m.agenda {
		for i, s := range day.Tasks() {
			if s.ID == id {
				m.day, m.selected = d, i
				return true
			}
		}
	}
	return false
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusTime = time.Now().Add(3 * time.Second)
}
