package review

import (
	"fmt"
	"strings"
)

// Conflict records a keyword one reviewer raised and the other did not.
type Conflict struct {
	Category       Category `json:"type"`
	Keyword        string   `json:"keyword"`
	OpinionA       string   `json:"opinion_a"`
	OpinionB       string   `json:"opinion_b"`
	Recommendation string   `json:"recommended,omitempty"`
}

const (
	opinionRaised    = "Mentioned security concern"
	opinionNotRaised = "No security concern mentioned"
)

// DetectConflicts compares two responses over the security keywords of
// vocab, in order, and reports the first keyword exactly one of them
// mentions. Names label the reviewers in the recommendation. It returns
// nil when either response is missing or when nothing differs.
func DetectConflicts(a, b *NamedText, vocab Vocabulary) []Conflict {
	if a == nil || b == nil {
		return nil
	}

	lowerA := strings.ToLower(a.Text)
	lowerB := strings.ToLower(b.Text)

	for _, k := range vocab.Filter(CategorySecurity) {
		inA := k.inLower(lowerA)
		inB := k.inLower(lowerB)
		if inA == inB {
			continue
		}

		c := Conflict{
			Category: CategorySecurity,
			Keyword:  k.Name,
			OpinionA: opinionNotRaised,
			OpinionB: opinionNotRaised,
		}
		raisedBy := b.Name
		if inA {
			c.OpinionA = opinionRaised
			raisedBy = a.Name
		} else {
			c.OpinionB = opinionRaised
		}
		c.Recommendation = "Review security concern from: " + raisedBy
		return []Conflict{c}
	}

	return nil
}

// CommonConcerns returns the security, performance and style keywords
// both responses mention, in vocabulary order.
func CommonConcerns(a, b string, vocab Vocabulary) []string {
	return vocab.
		Filter(CategorySecurity, CategoryPerformance, CategoryStyle).
		MentionedBy([]string{a, b}, 2)
}

// FormatCommonConcerns renders common concerns for display, or "" when
// there are none.
func FormatCommonConcerns(concerns []string) string {
	if len(concerns) == 0 {
		return ""
	}
	return fmt.Sprintf("Both reviewers mentioned: %s", strings.Join(concerns, ", "))
}

// NamedText is a reviewer's name and successful response text.
type NamedText struct {
	Name string
	Text string
}
