package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ReviewerStatus is the display state of one reviewer call.
type ReviewerStatus string

const (
	StatusPending   ReviewerStatus = "waiting"
	StatusRunning   ReviewerStatus = "reviewing"
	StatusSucceeded ReviewerStatus = "done"
	StatusFailed    ReviewerStatus = "failed"
	StatusTimedOut  ReviewerStatus = "timed out"
)

// finished reports whether the reviewer has a final outcome.
func (s ReviewerStatus) finished() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusTimedOut
}

// ReviewerState tracks one reviewer in the batch
type ReviewerState struct {
	Name      string
	Status    ReviewerStatus
	Error     string
	Duration  string
	StartedAt time.Time
}

// Model is the bubbletea model for a review batch in progress
type Model struct {
	// Configuration
	Title  string
	Styles Styles

	// State
	Reviewers []*ReviewerState
	byName    map[string]*ReviewerState
	Round     int
	Timeout   string
	Succeeded int
	Failed    int
	Consensus *float64
	StartTime time.Time
	LogLines  []string
	LogLimit  int
	ShowLogs  bool
	Width     int
	Height    int

	// Control
	Quitting bool
	Done     bool
}

// NewModel creates a model listing reviewers in batch order
func NewModel(title string, reviewers []string) *Model {
	m := &Model{
		Title:     title,
		Styles:    DefaultStyles(),
		byName:    make(map[string]*ReviewerState, len(reviewers)),
		StartTime: time.Now(),
		LogLimit:  200,
	}
	for _, name := range reviewers {
		r := &ReviewerState{Name: name, Status: StatusPending}
		m.Reviewers = append(m.Reviewers, r)
		m.byName[name] = r
	}
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// TickMsg is sent every second to update the timer
type TickMsg time.Time

// tickCmd returns a command that sends TickMsg every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DoneMsg signals the TUI should exit
type DoneMsg struct{}

// QuitMsg signals the user requested quit (q or Ctrl+C)
type QuitMsg struct{}

// BatchStartedMsg indicates the fan-out has begun
type BatchStartedMsg struct {
	Timeout string
}

// RoundStartedMsg indicates a debate round has begun
type RoundStartedMsg struct {
	Round int
}

// CallStartedMsg indicates a reviewer call is in flight
type CallStartedMsg struct {
	Reviewer string
}

// CallFinishedMsg indicates a reviewer has a final outcome
type CallFinishedMsg struct {
	Reviewer string
	Status   ReviewerStatus
	Error    string
	Duration string
}

// BatchCompletedMsg carries the batch summary
type BatchCompletedMsg struct {
	Succeeded int
	Total     int
	Consensus float64
}

// Finished returns how many reviewers have a final outcome
func (m *Model) Finished() int {
	n := 0
	for _, r := range m.Reviewers {
		if r.Status.finished() {
			n++
		}
	}
	return n
}

// reviewer returns the state for name, adding it when the batch reports a
// reviewer the model was not created with.
func (m *Model) reviewer(name string) *ReviewerState {
	if r, ok := m.byName[name]; ok {
		return r
	}
	r := &ReviewerState{Name: name, Status: StatusPending}
	m.Reviewers = append(m.Reviewers, r)
	m.byName[name] = r
	return r
}

// SetReviewers replaces the reviewer list. Call before the program runs.
func (m *Model) SetReviewers(names []string) {
	m.Reviewers = nil
	m.byName = make(map[string]*ReviewerState, len(names))
	for _, name := range names {
		m.reviewer(name)
	}
}
