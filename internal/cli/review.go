package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RevCBH/crosscritic/internal/config"
	"github.com/RevCBH/crosscritic/internal/debate"
	"github.com/RevCBH/crosscritic/internal/review"
)

// reviewOptions holds flags shared by the review subcommands
type reviewOptions struct {
	contextFiles []string
	jsonOut      bool
}

// NewReviewCmd creates the review command group
func NewReviewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review a plan or the current diff with two reviewers in parallel",
		Long: `Review sends the subject to both configured reviewers at once and prints
a synthesized summary with a consensus score and any security conflicts.

The result is saved as round 1 of a debate, so 'crosscritic debate continue'
can pick up from it.`,
	}
	cmd.AddCommand(newReviewPlanCmd(app), newReviewCodeCmd(app))
	return cmd
}

func newReviewPlanCmd(app *App) *cobra.Command {
	var opts reviewOptions
	cmd := &cobra.Command{
		Use:   "plan <plan-file>",
		Short: "Review a plan document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.reviewPlan(cmd, args[0], opts)
		},
	}
	addReviewFlags(cmd, &opts)
	return cmd
}

func newReviewCodeCmd(app *App) *cobra.Command {
	var opts reviewOptions
	cmd := &cobra.Command{
		Use:   "code [plan-file]",
		Short: "Review the staged (or unstaged) diff against an optional plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath := ""
			if len(args) == 1 {
				planPath = args[0]
			}
			return app.reviewCode(cmd, planPath, opts)
		},
	}
	addReviewFlags(cmd, &opts)
	return cmd
}

func addReviewFlags(cmd *cobra.Command, opts *reviewOptions) {
	cmd.Flags().StringSliceVar(&opts.contextFiles, "context", nil, "Extra context files to send with the prompt")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the result as JSON")
}

func (a *App) reviewPlan(cmd *cobra.Command, planPath string, opts reviewOptions) error {
	planPath, err := absPath(planPath)
	if err != nil {
		return err
	}
	plan, err := readSubject(planPath)
	if err != nil {
		return err
	}
	root, err := config.ProjectRoot(planPath)
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig(root)
	if err != nil {
		return err
	}
	contextText, err := readContext(a.stderr, opts.contextFiles)
	if err != nil {
		return err
	}

	return a.runBatch(cmd, cfg, "crosscritic review plan", func(ctx context.Context, rt *Runtime, out io.Writer) error {
		return a.pairReview(ctx, rt, out, pairReview{
			kind:        debate.KindPlan,
			subjectPath: planPath,
			prompt:      debate.PlanReviewPrompt(plan),
			contextText: contextText,
			jsonOut:     opts.jsonOut,
		})
	})
}

func (a *App) reviewCode(cmd *cobra.Command, planPath string, opts reviewOptions) error {
	dir, err := a.workDir()
	if err != nil {
		return err
	}
	root, err := repoRoot(cmd.Context(), dir, planPath)
	if err != nil {
		return err
	}

	plan := ""
	if planPath != "" {
		if planPath, err = absPath(planPath); err != nil {
			return err
		}
		if plan, err = readSubject(planPath); err != nil {
			return err
		}
	}

	diff, err := collectDiff(cmd.Context(), root)
	if errors.Is(err, errNoChanges) {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes to review.")
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig(root)
	if err != nil {
		return err
	}
	contextText, err := readContext(a.stderr, opts.contextFiles)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("crosscritic review code (%s diff)", humanize.Bytes(uint64(len(diff))))
	return a.runBatch(cmd, cfg, title, func(ctx context.Context, rt *Runtime, out io.Writer) error {
		return a.pairReview(ctx, rt, out, pairReview{
			kind:        debate.KindCode,
			subjectPath: planPath,
			prompt:      debate.CodeReviewPrompt(plan, diff),
			contextText: contextText,
			jsonOut:     opts.jsonOut,
		})
	})
}

// pairReview describes one two-reviewer review run
type pairReview struct {
	kind        debate.Kind
	subjectPath string
	prompt      string
	contextText string
	jsonOut     bool
}

func (p pairReview) subjectLabel() string {
	if p.subjectPath != "" {
		return p.subjectPath
	}
	return string(p.kind) + " review"
}

// pairReview runs the batch, saves it as debate round 1 and prints it
func (a *App) pairReview(ctx context.Context, rt *Runtime, out io.Writer, p pairReview) error {
	if n := len(rt.Reviewers); n != 2 {
		return fmt.Errorf("review needs exactly two reviewers, %d configured; use 'crosscritic multi'", n)
	}

	result, err := rt.Caller.Review(ctx, p.prompt, p.contextText, a.reviewOptions()...)
	if err != nil {
		return err
	}
	pair, err := review.NewPairResult(result)
	if err != nil {
		return err
	}

	session, err := debate.SessionFromBatch(p.kind, p.subjectPath, rt.Config.Debate.MaxRounds, result)
	if err != nil {
		return err
	}
	store := debate.NewStore(rt.Config.StatePath(stateFileFor(p.kind)))
	if err := store.Save(session); err != nil {
		return fmt.Errorf("save review state: %w", err)
	}
	rt.Logger.Info("review saved as debate round 1", zap.String("path", store.Path()))
	rt.Escalate(ctx, p.subjectLabel(), result)

	if p.jsonOut {
		if err := writeJSON(out, pair); err != nil {
			return err
		}
	} else {
		PrintBatch(out, result)
	}

	if !pair.Success() {
		return errAllFailed
	}
	return nil
}

// reviewOptions applies the --timeout flag to a single batch
func (a *App) reviewOptions() []review.ReviewOption {
	if a.opts.timeout > 0 {
		return []review.ReviewOption{review.WithTimeout(a.opts.timeout)}
	}
	return nil
}
