package debate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanReviewPrompt(t *testing.T) {
	p := PlanReviewPrompt("Add a login page")

	assert.True(t, strings.HasPrefix(p, "## Plan\nAdd a login page\n\n## Review Request"))
	assert.Contains(t, p, "### Step 1: Fatal Flaw Detection")
	assert.Contains(t, p, "### Step 4: Actionable Improvements (up to 3)")
	assert.Contains(t, p, `say "None"`)
}

func TestCodeReviewPrompt(t *testing.T) {
	withPlan := CodeReviewPrompt("the plan", "+added")
	assert.True(t, strings.HasPrefix(withPlan, "## Original Plan\nthe plan\n\n## Implemented Code (diff)\n+added"))
	assert.Contains(t, withPlan, "SQL injection, XSS, CSRF")
	assert.Contains(t, withPlan, "file:line")

	diffOnly := CodeReviewPrompt("", "+added")
	assert.True(t, strings.HasPrefix(diffOnly, "## Implemented Code (diff)\n+added"))
	assert.NotContains(t, diffOnly, "## Original Plan")
}

func TestInitialPrompt(t *testing.T) {
	assert.Equal(t, PlanReviewPrompt("x"), InitialPrompt(KindPlan, "x"))
	assert.Equal(t, CodeReviewPrompt("", "x"), InitialPrompt(KindCode, "x"))
}

func TestContinuePrompt(t *testing.T) {
	p := ContinuePrompt("subject", "## Round 1\n", 2, "")

	assert.True(t, strings.HasPrefix(p, "## Original Subject\nsubject\n\n## Debate So Far\n## Round 1\n\n\n## Round 2 Request\n\nRead the other reviewer's"))
	assert.NotContains(t, p, "**User request**")
	for _, section := range []string{"### 1. Agreements", "### 2. Rebuttals", "### 3. New Considerations", "### 4. Current Position"} {
		assert.Contains(t, p, section)
	}
}

func TestContinuePrompt_Focus(t *testing.T) {
	p := ContinuePrompt("subject", "", 3, "error handling")

	assert.Contains(t, p, "## Round 3 Request\n\n**User request**: focus on 'error handling'.\n\n\nRead the other reviewer's")
}
