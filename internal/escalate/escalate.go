// Package escalate notifies people when a review needs a human: reviewers
// disagree about a security concern, or no reviewer answered at all.
package escalate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/RevCBH/crosscritic/internal/review"
)

// Severity indicates how urgent the escalation is
type Severity string

const (
	SeverityInfo     Severity = "info"     // partial failure, result still usable
	SeverityWarning  Severity = "warning"  // reviewers disagree on security
	SeverityCritical Severity = "critical" // no reviewer produced a response
)

// Escalation is one notification about a review outcome
type Escalation struct {
	Severity Severity
	Subject  string            // plan path, diff or prompt label
	Title    string            // one line
	Message  string            // details
	Context  map[string]string // batch id, consensus, reviewer errors
}

// SortedContext returns the context keys in a stable order
func (e Escalation) SortedContext() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Escalator delivers escalations
type Escalator interface {
	// Escalate sends a notification. Implementations respect ctx.
	Escalate(ctx context.Context, e Escalation) error

	// Name returns the backend name for logging
	Name() string
}

// FromBatch builds the escalation a batch warrants. It returns false when
// the batch needs no human attention.
func FromBatch(subject string, result *review.BatchResult) (Escalation, bool) {
	if result == nil {
		return Escalation{}, false
	}

	e := Escalation{
		Subject: subject,
		Context: map[string]string{
			"batch":     result.ID,
			"consensus": fmt.Sprintf("%.2f", result.ConsensusScore),
			"reviewers": fmt.Sprintf("%d/%d", result.SuccessCount(), result.TotalCount()),
		},
	}
	for _, o := range result.Outcomes {
		if !o.Succeeded() {
			e.Context[o.Reviewer] = o.Err
		}
	}

	switch {
	case !result.AnySucceeded():
		e.Severity = SeverityCritical
		e.Title = "All reviewers failed"
		e.Message = "No reviewer produced a response; nothing was reviewed."
	case len(result.Conflicts) > 0:
		e.Severity = SeverityWarning
		e.Title = fmt.Sprintf("Reviewers disagree on %d security concern(s)", len(result.Conflicts))
		lines := make([]string, len(result.Conflicts))
		for i, c := range result.Conflicts {
			lines[i] = fmt.Sprintf("%s: %s", c.Keyword, c.Recommendation)
		}
		e.Message = strings.Join(lines, "\n")
	case !result.AllSucceeded():
		e.Severity = SeverityInfo
		e.Title = "Some reviewers failed"
		e.Message = fmt.Sprintf("Only %d of %d reviewers responded.", result.SuccessCount(), result.TotalCount())
	default:
		return Escalation{}, false
	}
	return e, true
}

// AtLeast reports whether s is as urgent as min
func (s Severity) AtLeast(min Severity) bool {
	return s.rank() >= min.rank()
}

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}
