package debate

import (
	"fmt"
	"strings"
)

// PlanReviewPrompt is the round-1 prompt for reviewing a plan.
func PlanReviewPrompt(plan string) string {
	return `## Plan
` + plan + `

## Review Request

Review the plan critically, following the steps below.
If a step has nothing to report, say "None".

### Step 1: Fatal Flaw Detection
Does the plan have a fatal flaw that would block implementation or cause major problems?
- Technical impossibility
- Serious security vulnerability
- Fundamental design error

### Step 2: Missing Requirements (up to 3)
For each missing requirement, explain **why** it must not be left out.

### Step 3: Edge Cases (up to 3)
For each edge case the plan does not consider:
- A concrete input example
- The expected problem
- The recommended handling

### Step 4: Actionable Improvements (up to 3)
Concrete improvements that can be applied right away.
Include code or specification changes instead of abstract advice.`
}

// CodeReviewPrompt is the round-1 prompt for reviewing a diff. The plan
// section is omitted when plan is empty.
func CodeReviewPrompt(plan, diff string) string {
	var b strings.Builder
	if plan != "" {
		b.WriteString("## Original Plan\n")
		b.WriteString(plan)
		b.WriteString("\n\n")
	}
	b.WriteString("## Implemented Code (diff)\n")
	b.WriteString(diff)
	b.WriteString(`

## Review Request

Review the code critically, following the steps below.
If a step has nothing to report, say "None".

### Step 1: Fatal Flaw Detection
- Security vulnerabilities (SQL injection, XSS, CSRF, etc.)
- Possible data loss
- Infinite loops or deadlocks

### Step 2: Plan Deviation
Is anything implemented differently from the plan?
- Missing features
- Unrequested additions (over-engineering)
- Misread requirements

### Step 3: Edge Cases & Error Handling (up to 3)
- A concrete input example
- What the current code does
- The recommended fix

### Step 4: Actionable Improvements (up to 3)
Include concrete code changes.
Give locations as file:line.`)
	return b.String()
}

// InitialPrompt selects the round-1 prompt for kind.
func InitialPrompt(kind Kind, subject string) string {
	if kind == KindCode {
		return CodeReviewPrompt("", subject)
	}
	return PlanReviewPrompt(subject)
}

// ContinuePrompt builds the prompt for round number: the subject, the
// transcript so far, an optional focus directive and the round
// instructions.
func ContinuePrompt(subject, transcript string, number int, focus string) string {
	focusLine := ""
	if focus != "" {
		focusLine = fmt.Sprintf("\n\n**User request**: focus on '%s'.\n", focus)
	}

	return fmt.Sprintf(`## Original Subject
%s

## Debate So Far
%s

## Round %d Request%s

Read the other reviewer's previous opinions and respond.

### 1. Agreements
Acknowledge any valid points the other reviewer made.

### 2. Rebuttals
For each point you disagree with:
- What is wrong or overstated
- Why you think so, with justification
- An alternative, if you have one

### 3. New Considerations
Add anything important that has not been raised yet.

### 4. Current Position
Summarize your overall assessment of this plan or code in one sentence.`, subject, transcript, number, focusLine)
}
