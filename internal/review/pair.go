package review

import (
	"encoding/json"
	"fmt"
)

// PairResult is the two-reviewer view of a batch: reviewer A is the first
// input reviewer and reviewer B the second.
type PairResult struct {
	batch *BatchResult
}

// NewPairResult wraps a two-reviewer batch.
func NewPairResult(b *BatchResult) (*PairResult, error) {
	if b.TotalCount() != 2 {
		return nil, fmt.Errorf("pair result needs exactly 2 outcomes, got %d", b.TotalCount())
	}
	return &PairResult{batch: b}, nil
}

// A returns reviewer A's outcome.
func (p *PairResult) A() Outcome { return p.batch.Outcomes[0] }

// B returns reviewer B's outcome.
func (p *PairResult) B() Outcome { return p.batch.Outcomes[1] }

// Success reports whether at least one reviewer succeeded.
func (p *PairResult) Success() bool { return p.batch.AnySucceeded() }

// BothSuccess reports whether both reviewers succeeded.
func (p *PairResult) BothSuccess() bool { return p.batch.AllSucceeded() }

// Conflicts returns the detected conflicts.
func (p *PairResult) Conflicts() []Conflict { return p.batch.Conflicts }

// Synthesized returns the rendered summary.
func (p *PairResult) Synthesized() string { return p.batch.Synthesized }

// CommonConcerns returns keywords both reviewers raised; nil unless both
// succeeded.
func (p *PairResult) CommonConcerns(vocab Vocabulary) []string {
	if !p.BothSuccess() {
		return nil
	}
	return CommonConcerns(p.A().Content(), p.B().Content(), vocab)
}

type pairJSON struct {
	ReviewerA       string     `json:"reviewer_a"`
	ReviewerB       string     `json:"reviewer_b"`
	ReviewerAReview *string    `json:"reviewer_a_review"`
	ReviewerBReview *string    `json:"reviewer_b_review"`
	ReviewerAError  *string    `json:"reviewer_a_error"`
	ReviewerBError  *string    `json:"reviewer_b_error"`
	Synthesized     string     `json:"synthesized"`
	Conflicts       []Conflict `json:"conflicts"`
}

// MarshalJSON renders the pair with nullable review and error fields.
func (p *PairResult) MarshalJSON() ([]byte, error) {
	a, b := p.A(), p.B()
	out := pairJSON{
		ReviewerA:   a.Reviewer,
		ReviewerB:   b.Reviewer,
		Synthesized: p.batch.Synthesized,
		Conflicts:   p.batch.Conflicts,
	}
	out.ReviewerAReview, out.ReviewerAError = reviewOrError(a)
	out.ReviewerBReview, out.ReviewerBError = reviewOrError(b)
	if out.Conflicts == nil {
		out.Conflicts = []Conflict{}
	}
	return json.Marshal(out)
}

func reviewOrError(o Outcome) (review, errMsg *string) {
	if o.Succeeded() {
		content := o.Response.Content
		return &content, nil
	}
	msg := o.Err
	return nil, &msg
}
