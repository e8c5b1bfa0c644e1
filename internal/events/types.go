package events

import (
	"fmt"
	"strings"
	"time"
)

// Event is one progress notification from a review batch or debate round.
// Reviewer is empty for batch-level events; Round is nil outside debates.
type Event struct {
	Time     time.Time `json:"time"`
	Type     EventType `json:"type"`
	Batch    string    `json:"batch,omitempty"`
	Reviewer string    `json:"reviewer,omitempty"`
	Round    *int      `json:"round,omitempty"`
	Payload  any       `json:"payload,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// EventType names what happened, namespaced by the emitting component.
type EventType string

const (
	// BatchStarted precedes every reviewer call.
	// Payload: reviewers, timeout.
	BatchStarted EventType = "review.batch.started"
	// BatchCompleted follows the last outcome.
	// Payload: succeeded, total, consensus.
	BatchCompleted EventType = "review.batch.completed"

	CallStarted   EventType = "review.call.started"
	CallSucceeded EventType = "review.call.succeeded"
	CallFailed    EventType = "review.call.failed"
	CallTimedOut  EventType = "review.call.timed_out"

	RoundStarted   EventType = "debate.round.started"
	RoundCompleted EventType = "debate.round.completed"
)

var failureTypes = map[EventType]bool{
	CallFailed:   true,
	CallTimedOut: true,
}

func NewEvent(eventType EventType, batch string) Event {
	return Event{Type: eventType, Batch: batch}
}

func (e Event) WithReviewer(name string) Event {
	e.Reviewer = name
	return e
}

func (e Event) WithRound(round int) Event {
	e.Round = &round
	return e
}

func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	return e
}

func (e Event) WithError(msg string) Event {
	e.Error = msg
	return e
}

// IsFailure reports whether the event records a failed reviewer call.
func (e Event) IsFailure() bool {
	return failureTypes[e.Type]
}

func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", e.Type)
	if e.Reviewer != "" {
		b.WriteString(" " + e.Reviewer)
	}
	if e.Round != nil {
		fmt.Fprintf(&b, " round=%d", *e.Round)
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " error=%q", e.Error)
	}
	return b.String()
}
