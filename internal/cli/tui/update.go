package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		case "l":
			m.ShowLogs = !m.ShowLogs
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TickMsg:
		// Continue ticking for timer updates
		return m, tickCmd()

	case DoneMsg:
		m.Done = true
		return m, tea.Quit

	case QuitMsg:
		m.Quitting = true
		return m, tea.Quit

	case BatchStartedMsg:
		m.Timeout = msg.Timeout

	case RoundStartedMsg:
		m.Round = msg.Round

	case CallStartedMsg:
		r := m.reviewer(msg.Reviewer)
		r.Status = StatusRunning
		r.StartedAt = time.Now()

	case CallFinishedMsg:
		r := m.reviewer(msg.Reviewer)
		if r.Status.finished() {
			break
		}
		r.Status = msg.Status
		r.Error = msg.Error
		r.Duration = msg.Duration
		if msg.Status == StatusSucceeded {
			m.Succeeded++
		} else {
			m.Failed++
		}

	case BatchCompletedMsg:
		consensus := msg.Consensus
		m.Consensus = &consensus

	case LogMsg:
		m.LogLines = append(m.LogLines, msg.Line)
		if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
			m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
		}
	}

	return m, nil
}
