package review

import (
	"fmt"
	"strings"
)

// Synthesize renders the batch as a single markdown summary: the consensus
// score, each reviewer's response or error, common keywords when at least
// two reviewers succeeded, and any conflicts.
func Synthesize(outcomes []Outcome, score float64, conflicts []Conflict, vocab Vocabulary) string {
	parts := []string{
		"# Review Summary\n",
		fmt.Sprintf("**Consensus Score: %.2f**\n", score),
	}

	for _, o := range outcomes {
		parts = append(parts, fmt.Sprintf("## %s\n", o.Reviewer))
		if o.Succeeded() {
			parts = append(parts, o.Response.Content)
		} else {
			parts = append(parts, fmt.Sprintf("*Error: %s*", o.Err))
		}
		parts = append(parts, "\n---\n")
	}

	texts := successfulTexts(outcomes)
	if len(texts) >= 2 {
		parts = append(parts, "## Common Concerns\n")
		if common := vocab.MentionedBy(texts, 2); len(common) > 0 {
			parts = append(parts, "Keywords mentioned by multiple reviewers: "+strings.Join(common, ", "))
		} else {
			parts = append(parts, "*No common keywords detected.*")
		}
	}

	if len(conflicts) > 0 {
		parts = append(parts, "\n## Conflicts\n")
		for _, c := range conflicts {
			line := fmt.Sprintf("- **%s** (%s): A: %s / B: %s", c.Category, c.Keyword, c.OpinionA, c.OpinionB)
			if c.Recommendation != "" {
				line += ". " + c.Recommendation
			}
			parts = append(parts, line)
		}
	}

	return strings.Join(parts, "\n")
}
