package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RevCBH/crosscritic/internal/events"
	"github.com/RevCBH/crosscritic/internal/loop"
	"github.com/RevCBH/crosscritic/internal/provider"
	"github.com/RevCBH/crosscritic/internal/review"
)

func TestFormatOutcomeLine_Success(t *testing.T) {
	tokens := 1204
	line := FormatOutcomeLine(review.Outcome{
		Reviewer: "codex-gpt",
		Response: &provider.Response{Content: "ok", TokensUsed: &tokens},
		Duration: 12340 * time.Millisecond,
	})

	assert.Contains(t, line, string(SymbolSucceeded))
	assert.Contains(t, line, "codex-gpt")
	assert.Contains(t, line, "12.3s")
	assert.Contains(t, line, "1,204 tokens")
}

func TestFormatOutcomeLine_Failures(t *testing.T) {
	failed := FormatOutcomeLine(review.Outcome{Reviewer: "a", Err: "a: exit status 1"})
	assert.Contains(t, failed, string(SymbolFailed))
	assert.Contains(t, failed, "a: exit status 1")

	timedOut := FormatOutcomeLine(review.Outcome{Reviewer: "b", Err: "b: Timed out after 450s", TimedOut: true})
	assert.Contains(t, timedOut, string(SymbolTimedOut))
}

func TestPrintLoopState_HistoryLimit(t *testing.T) {
	state := loop.NewState()
	state.LastConflicts = []string{"auth"}
	for _, e := range []string{"one", "two", "three"} {
		state.History = append(state.History, loop.HistoryEntry{Iteration: 1, Phase: "plan_review", Event: e})
	}

	var buf bytes.Buffer
	PrintLoopState(&buf, state, 2)
	out := buf.String()

	assert.Contains(t, out, "Iteration 1 of 5")
	assert.Contains(t, out, "  - auth")
	assert.Contains(t, out, "3 event(s)")
	assert.NotContains(t, out, "] one")
	assert.Contains(t, out, "] two")
	assert.Contains(t, out, "] three")
}

func TestFormatDetails_Sorted(t *testing.T) {
	assert.Equal(t, "a=1 b=x c=true", formatDetails(map[string]any{"c": true, "a": 1, "b": "x"}))
}

func TestProgressHandler(t *testing.T) {
	var buf bytes.Buffer
	handle := ProgressHandler(&buf)

	handle(events.NewEvent(events.BatchStarted, "b1").WithPayload(map[string]any{"reviewers": 2, "timeout": "450s"}))
	handle(events.NewEvent(events.CallSucceeded, "b1").WithReviewer("a").WithPayload(map[string]any{"duration": "1s"}))
	handle(events.NewEvent(events.CallTimedOut, "b1").WithReviewer("b").WithError("b: Timed out after 450s"))
	handle(events.NewEvent(events.RoundStarted, "s1").WithRound(3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "2 reviewer(s), timeout 450s")
	assert.Contains(t, lines[1], "a")
	assert.Contains(t, lines[2], "Timed out after 450s")
	assert.Contains(t, lines[3], "Debate round 3")
}
