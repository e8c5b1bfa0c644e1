package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RevCBH/crosscritic/internal/events"
)

// Sender delivers messages to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge connects the event bus to the bubbletea program
type Bridge struct {
	program Sender
}

// NewBridge creates a new bridge for the given program
func NewBridge(program Sender) *Bridge {
	return &Bridge{
		program: program,
	}
}

// Handler returns an event handler function for the event bus
func (b *Bridge) Handler() events.Handler {
	return func(evt events.Event) {
		msg := eventToMsg(evt)
		if msg != nil {
			b.program.Send(msg)
		}
	}
}

// eventToMsg converts an events.Event to a tea.Msg
func eventToMsg(evt events.Event) tea.Msg {
	payload, _ := evt.Payload.(map[string]any)

	switch evt.Type {
	case events.BatchStarted:
		timeout, _ := payload["timeout"].(string)
		return BatchStartedMsg{Timeout: timeout}

	case events.RoundStarted:
		round := 0
		if evt.Round != nil {
			round = *evt.Round
		}
		return RoundStartedMsg{Round: round}

	case events.CallStarted:
		return CallStartedMsg{Reviewer: evt.Reviewer}

	case events.CallSucceeded:
		duration, _ := payload["duration"].(string)
		return CallFinishedMsg{Reviewer: evt.Reviewer, Status: StatusSucceeded, Duration: duration}

	case events.CallFailed:
		return CallFinishedMsg{Reviewer: evt.Reviewer, Status: StatusFailed, Error: evt.Error}

	case events.CallTimedOut:
		return CallFinishedMsg{Reviewer: evt.Reviewer, Status: StatusTimedOut, Error: evt.Error}

	case events.BatchCompleted:
		succeeded, _ := payload["succeeded"].(int)
		total, _ := payload["total"].(int)
		consensus, _ := payload["consensus"].(float64)
		return BatchCompletedMsg{Succeeded: succeeded, Total: total, Consensus: consensus}

	default:
		return nil
	}
}

// SendDone sends a DoneMsg to the program
func (b *Bridge) SendDone() {
	b.program.Send(DoneMsg{})
}
