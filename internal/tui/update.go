package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/stint/internal/logger"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case AgendaLoadedMsg:
		m.agenda = msg.Days
		m.loading = false
		if m.follow != "" {
			m.selectTask(m.follow)
			m.follow = ""
		}
		m.clampSelection()
		return m, nil

	case ChangedMsg:
		status := msg.Status
		if msg.Conflict != nil {
			status += fmt.Sprintf(" (overlaps %q)", msg.Conflict.Title)
		}
		m.setStatus(status)
		m.loading = true
		return m, LoadAgenda(m.service, m.from, m.days)

	case ErrMsg:
		logger.Error("timeline edit failed", "error", msg.Err)
		m.err = msg.Err
		m.follow = ""
		m.loading = false
		m.setStatus(fmt.Sprintf("Error: %v", msg.Err))
		return m, nil
	}

	return m, nil
}
