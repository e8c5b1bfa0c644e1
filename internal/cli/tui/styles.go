package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all lipgloss styles for the TUI
type Styles struct {
	// Header styling
	Title lipgloss.Style
	Timer lipgloss.Style
	Meta  lipgloss.Style

	// Reviewer styling
	ReviewerName lipgloss.Style
	Pending      lipgloss.Style
	Running      lipgloss.Style
	Succeeded    lipgloss.Style
	Failed       lipgloss.Style
	ErrorText    lipgloss.Style

	// Footer styling
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Log area styling
	LogTitle lipgloss.Style
	LogLine  lipgloss.Style
}

// DefaultStyles returns the default TUI styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Timer: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Meta:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		ReviewerName: lipgloss.NewStyle().Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Running:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Succeeded:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Failed:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		ErrorText:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true),

		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		FooterKey: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),

		LogTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true),
		LogLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Icons used in the TUI
const (
	IconPending   = "○"
	IconRunning   = "●"
	IconSucceeded = "✓"
	IconFailed    = "✗"
)
