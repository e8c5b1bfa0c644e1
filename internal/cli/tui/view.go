package tui

import (
	"fmt"
	"strings"
	"time"
)

// logPaneLines is how many trailing log lines the log pane shows.
const logPaneLines = 8

// View implements tea.Model
func (m *Model) View() string {
	if m.Done || m.Quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	for _, r := range m.Reviewers {
		b.WriteString(m.renderReviewer(r))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	if m.ShowLogs {
		b.WriteString(m.renderLogs())
	}

	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with timer, round and timeout
func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	parts := []string{
		m.Styles.Title.Render(m.Title),
		m.Styles.Timer.Render(fmt.Sprintf("[%s]", formatDuration(elapsed))),
	}
	if m.Round > 0 {
		parts = append(parts, m.Styles.Meta.Render(fmt.Sprintf("Round %d", m.Round)))
	}
	if m.Timeout != "" {
		parts = append(parts, m.Styles.Meta.Render("Timeout: "+m.Timeout))
	}
	return strings.Join(parts, "  ")
}

// renderReviewer renders one reviewer line:  ● codex-gpt  reviewing 00:00:12
func (m *Model) renderReviewer(r *ReviewerState) string {
	var icon, status string
	switch r.Status {
	case StatusRunning:
		icon = m.Styles.Running.Render(IconRunning)
		status = m.Styles.Running.Render(string(r.Status))
		if !r.StartedAt.IsZero() {
			status += " " + m.Styles.Timer.Render(formatDuration(time.Since(r.StartedAt).Round(time.Second)))
		}
	case StatusSucceeded:
		icon = m.Styles.Succeeded.Render(IconSucceeded)
		status = m.Styles.Succeeded.Render(string(r.Status))
		if r.Duration != "" {
			status += " " + m.Styles.Timer.Render(r.Duration)
		}
	case StatusFailed, StatusTimedOut:
		icon = m.Styles.Failed.Render(IconFailed)
		status = m.Styles.Failed.Render(string(r.Status))
		if r.Error != "" {
			status += " " + m.Styles.ErrorText.Render(r.Error)
		}
	default:
		icon = m.Styles.Pending.Render(IconPending)
		status = m.Styles.Pending.Render(string(r.Status))
	}
	return fmt.Sprintf("  %s %s  %s", icon, m.Styles.ReviewerName.Render(r.Name), status)
}

// renderStatusLine renders the summary status line
func (m *Model) renderStatusLine() string {
	succeeded := m.Styles.Succeeded.Render(fmt.Sprintf("%d succeeded", m.Succeeded))
	failed := m.Styles.Failed.Render(fmt.Sprintf("%d failed", m.Failed))

	line := fmt.Sprintf("  Reviewers: %d/%d %s | %s", m.Finished(), len(m.Reviewers), succeeded, failed)
	if m.Consensus != nil {
		line += fmt.Sprintf(" | consensus %.2f", *m.Consensus)
	}
	return line
}

// renderLogs renders the most recent log lines
func (m *Model) renderLogs() string {
	var b strings.Builder
	b.WriteString(m.Styles.LogTitle.Render("  Logs"))
	b.WriteString("\n")

	lines := m.LogLines
	if len(lines) > logPaneLines {
		lines = lines[len(lines)-logPaneLines:]
	}
	for _, line := range lines {
		b.WriteString("  ")
		b.WriteString(m.Styles.LogLine.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFooter renders the help text
func (m *Model) renderFooter() string {
	quit := m.Styles.FooterKey.Render("q")
	logs := m.Styles.FooterKey.Render("l")
	return m.Styles.Footer.Render(fmt.Sprintf("  Press %s to quit, %s to toggle logs", quit, logs))
}

// formatDuration formats a duration as HH:MM:SS
func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
