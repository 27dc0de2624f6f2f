package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/stint/internal/logger"
	"github.com/javiermolinar/stint/internal/timeline"
)

const stepMinutes = int(timeline.Step / time.Minute)

type keyMap struct {
	// Normal mode
	Up      key.Binding
	Down    key.Binding
	PrevDay key.Binding
	NextDay key.Binding
	Move    key.Binding
	Snooze  key.Binding
	Done    key.Binding
	Accept  key.Binding
	Reload  key.Binding
	Help    key.Binding
	Quit    key.Binding

	// Move mode
	Earlier     key.Binding
	Later       key.Binding
	HourEarlier key.Binding
	HourLater   key.Binding
	DayEarlier  key.Binding
	DayLater    key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "prev task")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "next task")),
		PrevDay: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev day")),
		NextDay: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next day")),
		Move:    key.NewBinding(key.WithKeys("m", "enter"), key.WithHelp("m", "move")),
		Snooze:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "snooze")),
		Done:    key.NewBinding(key.WithKeys("d", " "), key.WithHelp("d", "done")),
		Accept:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Earlier:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "-15m")),
		Later:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "+15m")),
		HourEarlier: key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "-1h")),
		HourLater:   key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "+1h")),
		DayEarlier:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "-1 day")),
		DayLater:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "+1 day")),
		Confirm:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// bindings adapts a list of bindings to help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

func (m Model) helpBindings() bindings {
	k := m.keys
	if m.mode == ModeMove {
		return bindings{k.Earlier, k.Later, k.HourEarlier, k.HourLater, k.DayEarlier, k.DayLater, k.Confirm, k.Cancel}
	}
	if m.help.ShowAll {
		return bindings{k.Up, k.Down, k.PrevDay, k.NextDay, k.Move, k.Snooze, k.Done, k.Accept, k.Reload, k.Help, k.Quit}
	}
	return bindings{k.Move, k.Snooze, k.Done, k.Accept, k.Help, k.Quit}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	logger.Debug("key press", "key", msg.String(), "mode", m.mode)

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.statusMsg != "" && time.Now().After(m.statusTime) {
		m.statusMsg = ""
	}

	if m.mode == ModeMove {
		return m.handleMoveKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.selected = max(m.selected-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.selected = min(m.selected+1, max(len(m.currentTasks())-1, 0))
	case key.Matches(msg, m.keys.PrevDay):
		if m.day > 0 {
			m.day--
			m.selected = 0
		}
	case key.Matches(msg, m.keys.NextDay):
		if m.day < len(m.agenda)-1 {
			m.day++
			m.selected = 0
		}

	case key.Matches(msg, m.keys.Move):
		if _, ok := m.selectedTask(); ok {
			m.mode = ModeMove
			m.moveDelta, m.moveDays = 0, 0
		}
	case key.Matches(msg, m.keys.Snooze):
		if s, ok := m.selectedTask(); ok {
			m.follow = s.ID
			return m, SnoozeTask(m.service, s.ID)
		}
	case key.Matches(msg, m.keys.Done):
		if s, ok := m.selectedTask(); ok {
			m.follow = s.ID
			return m, ToggleDone(m.service, s.ID)
		}
	case key.Matches(msg, m.keys.Accept):
		if s, ok := m.selectedTask(); ok {
			if !s.AutoScheduled {
				m.setStatus("Already placed by hand")
				return m, nil
			}
			m.follow = s.ID
			return m, AcceptTask(m.service, s.ID)
		}
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, LoadAgenda(m.service, m.from, m.days)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) handleMoveKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = ModeNormal
		m.setStatus("Move cancelled")

	case key.Matches(msg, m.keys.Confirm):
		m.mode = ModeNormal
		s, ok := m.selectedTask()
		if !ok || (m.moveDelta == 0 && m.moveDays == 0) {
			return m, nil
		}
		m.follow = s.ID
		return m, MoveTask(m.service, s.ID, m.moveTarget(s), m.moveDelta)

	case key.Matches(msg, m.keys.HourEarlier):
		m.moveDelta -= 60
	case key.Matches(msg, m.keys.HourLater):
		m.moveDelta += 60
	case key.Matches(msg, m.keys.Earlier):
		m.moveDelta -= stepMinutes
	case key.Matches(msg, m.keys.Later):
		m.moveDelta += stepMinutes
	case key.Matches(msg, m.keys.DayEarlier):
		m.moveDays--
	case key.Matches(msg, m.keys.DayLater):
		m.moveDays++
	}
	return m, nil
}
