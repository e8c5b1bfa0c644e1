package review

import (
	"encoding/json"
	"time"

	"github.com/RevCBH/crosscritic/internal/provider"
)

// Outcome is the result of one reviewer call within a batch. Exactly one
// of Response and Err is set.
type Outcome struct {
	// Index is the reviewer's position in the batch input
	Index int

	// Reviewer is the reviewer name
	Reviewer string

	// Response is set on success
	Response *provider.Response

	// Err is "<reviewer>: <message>" on failure
	Err string

	// TimedOut marks failures caused by the batch deadline
	TimedOut bool

	// Duration is how long the call took (zero when abandoned)
	Duration time.Duration
}

// Succeeded reports whether the call produced a response.
func (o Outcome) Succeeded() bool {
	return o.Response != nil
}

// Content returns the response text, or "" on failure.
func (o Outcome) Content() string {
	if o.Response == nil {
		return ""
	}
	return o.Response.Content
}

// BatchResult is the aggregate of one fan-out call. Outcomes are in
// reviewer input order.
type BatchResult struct {
	ID             string
	Outcomes       []Outcome
	Synthesized    string
	ConsensusScore float64

	// Conflicts is only computed for two-reviewer batches
	Conflicts []Conflict
}

// SuccessCount returns the number of successful outcomes.
func (b *BatchResult) SuccessCount() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// TotalCount returns the number of reviewers in the batch.
func (b *BatchResult) TotalCount() int {
	return len(b.Outcomes)
}

// AllSucceeded reports whether every reviewer succeeded.
func (b *BatchResult) AllSucceeded() bool {
	return b.SuccessCount() == len(b.Outcomes)
}

// AnySucceeded reports whether at least one reviewer succeeded.
func (b *BatchResult) AnySucceeded() bool {
	return b.SuccessCount() > 0
}

// Successful returns the response texts of successful outcomes, in order.
func (b *BatchResult) Successful() []string {
	return successfulTexts(b.Outcomes)
}

func successfulTexts(outcomes []Outcome) []string {
	var texts []string
	for _, o := range outcomes {
		if o.Succeeded() {
			texts = append(texts, o.Response.Content)
		}
	}
	return texts
}

// batchJSON is the serialized form of a BatchResult.
type batchJSON struct {
	ID             string     `json:"id"`
	Reviewers      []string   `json:"reviewers"`
	Reviews        []*string  `json:"reviews"`
	Errors         []string   `json:"errors"`
	Synthesized    string     `json:"synthesized"`
	ConsensusScore float64    `json:"consensus_score"`
	SuccessCount   int        `json:"success_count"`
	TotalCount     int        `json:"total_count"`
	Conflicts      []Conflict `json:"conflicts,omitempty"`
}

// MarshalJSON renders reviews as content-or-null per reviewer and errors
// as the list of failure messages.
func (b *BatchResult) MarshalJSON() ([]byte, error) {
	out := batchJSON{
		ID:             b.ID,
		Reviewers:      make([]string, 0, len(b.Outcomes)),
		Reviews:        make([]*string, 0, len(b.Outcomes)),
		Errors:         []string{},
		Synthesized:    b.Synthesized,
		ConsensusScore: b.ConsensusScore,
		SuccessCount:   b.SuccessCount(),
		TotalCount:     b.TotalCount(),
		Conflicts:      b.Conflicts,
	}
	for _, o := range b.Outcomes {
		out.Reviewers = append(out.Reviewers, o.Reviewer)
		if o.Succeeded() {
			content := o.Response.Content
			out.Reviews = append(out.Reviews, &content)
			continue
		}
		out.Reviews = append(out.Reviews, nil)
		out.Errors = append(out.Errors, o.Err)
	}
	return json.Marshal(out)
}
