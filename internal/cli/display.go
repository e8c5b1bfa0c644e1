package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/RevCBH/crosscritic/internal/debate"
	"github.com/RevCBH/crosscritic/internal/events"
	"github.com/RevCBH/crosscritic/internal/loop"
	"github.com/RevCBH/crosscritic/internal/review"
)

// StatusSymbol marks an outcome in plain output
type StatusSymbol string

const (
	SymbolSucceeded StatusSymbol = "✓"
	SymbolFailed    StatusSymbol = "✗"
	SymbolTimedOut  StatusSymbol = "⏱"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// outcomeSymbol returns the symbol for an outcome
func outcomeSymbol(o review.Outcome) StatusSymbol {
	switch {
	case o.Succeeded():
		return SymbolSucceeded
	case o.TimedOut:
		return SymbolTimedOut
	default:
		return SymbolFailed
	}
}

// FormatOutcomeLine formats one reviewer's outcome:  ✓ codex-gpt  12.3s  1,204 tokens
func FormatOutcomeLine(o review.Outcome) string {
	symbol := outcomeSymbol(o)
	if !o.Succeeded() {
		return fmt.Sprintf("  %s %s  %s", failStyle.Render(string(symbol)), o.Reviewer, failStyle.Render(o.Err))
	}

	parts := []string{fmt.Sprintf("  %s %s", okStyle.Render(string(symbol)), o.Reviewer)}
	if o.Duration > 0 {
		parts = append(parts, dimStyle.Render(o.Duration.Round(100*time.Millisecond).String()))
	}
	if o.Response.TokensUsed != nil {
		parts = append(parts, dimStyle.Render(humanize.Comma(int64(*o.Response.TokensUsed))+" tokens"))
	}
	return strings.Join(parts, "  ")
}

// FormatBatchHeader summarizes a batch in one line
func FormatBatchHeader(result *review.BatchResult) string {
	score := fmt.Sprintf("Consensus %.2f", result.ConsensusScore)
	counts := fmt.Sprintf("%d/%d reviewers succeeded", result.SuccessCount(), result.TotalCount())
	style := okStyle
	switch {
	case !result.AnySucceeded():
		style = failStyle
	case !result.AllSucceeded():
		style = warnStyle
	}
	return fmt.Sprintf("%s  %s  %s",
		headerStyle.Render(score),
		style.Render(counts),
		dimStyle.Render("batch "+result.ID),
	)
}

// PrintBatch writes the batch summary, per-reviewer outcome lines and the
// synthesized review
func PrintBatch(w io.Writer, result *review.BatchResult) {
	fmt.Fprintln(w, FormatBatchHeader(result))
	for _, o := range result.Outcomes {
		fmt.Fprintln(w, FormatOutcomeLine(o))
	}
	if len(result.Conflicts) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  %d conflict(s) between reviewers", len(result.Conflicts))))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, result.Synthesized)
}

// PrintRound writes the latest round of a debate and what to do next
func PrintRound(w io.Writer, s *debate.Session, result *review.BatchResult) {
	round := s.LatestRound()
	if round == nil {
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s round (%d of %d)", humanize.Ordinal(round.Number), round.Number, s.MaxRounds)))
	if result != nil {
		for _, o := range result.Outcomes {
			fmt.Fprintln(w, FormatOutcomeLine(o))
		}
	}
	fmt.Fprintln(w)
	for _, e := range round.Entries {
		fmt.Fprintf(w, "### %s\n%s\n\n", e.Reviewer, e.Text())
	}

	if s.Full() {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("Maximum rounds (%d) reached; the debate is over.", s.MaxRounds)))
		return
	}
	hint := "crosscritic debate continue " + s.SubjectPath
	if s.Kind == debate.KindCode {
		hint += " --type code"
	}
	fmt.Fprintln(w, dimStyle.Render("Continue with: "+hint))
}

// PrintSessionStatus writes the round count and the full transcript
func PrintSessionStatus(w io.Writer, s *debate.Session) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d of %d rounds", s.RoundCount(), s.MaxRounds)))
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("type:"), s.Kind)
	if s.SubjectPath != "" {
		fmt.Fprintf(w, "%s %s\n", dimStyle.Render("subject:"), s.SubjectPath)
	}
	fmt.Fprintf(w, "%s %s\n\n", dimStyle.Render("reviewers:"), strings.Join(s.Reviewers, ", "))
	fmt.Fprint(w, s.Transcript())
}

// PrintLoopState writes the checkpoint and its most recent history
func PrintLoopState(w io.Writer, state *loop.State, historyLimit int) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Iteration %d of %d", state.Iteration, state.MaxIterations)))
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("phase:"), state.Phase)

	resolved := failStyle.Render("no")
	if state.Resolved {
		resolved = okStyle.Render("yes")
	}
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("resolved:"), resolved)

	if len(state.LastConflicts) > 0 {
		fmt.Fprintln(w, dimStyle.Render("last conflicts:"))
		for _, c := range state.LastConflicts {
			fmt.Fprintf(w, "  - %s\n", c)
		}
	}

	history := state.History
	if len(history) == 0 {
		return
	}
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("history:"), humanize.Comma(int64(len(history)))+" event(s)")
	if historyLimit > 0 && len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	for _, h := range history {
		line := fmt.Sprintf("  [%d %s] %s", h.Iteration, h.Phase, h.Event)
		if len(h.Details) > 0 {
			line += " " + dimStyle.Render(formatDetails(h.Details))
		}
		fmt.Fprintln(w, line)
	}
}

func formatDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, details[k])
	}
	return strings.Join(parts, " ")
}

// ProgressHandler returns an event handler that reports batch progress as
// plain lines, for terminals without the interactive view
func ProgressHandler(w io.Writer) events.Handler {
	return func(e events.Event) {
		switch e.Type {
		case events.RoundStarted:
			if e.Round != nil {
				fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Debate round %d", *e.Round)))
			}
		case events.BatchStarted:
			payload, _ := e.Payload.(map[string]any)
			fmt.Fprintf(w, "Reviewing with %v reviewer(s), timeout %v\n", payload["reviewers"], payload["timeout"])
		case events.CallSucceeded:
			payload, _ := e.Payload.(map[string]any)
			fmt.Fprintf(w, "  %s %s %s\n", okStyle.Render(string(SymbolSucceeded)), e.Reviewer, dimStyle.Render(fmt.Sprint(payload["duration"])))
		case events.CallFailed:
			fmt.Fprintf(w, "  %s %s\n", failStyle.Render(string(SymbolFailed)), e.Error)
		case events.CallTimedOut:
			fmt.Fprintf(w, "  %s %s\n", failStyle.Render(string(SymbolTimedOut)), e.Error)
		}
	}
}
