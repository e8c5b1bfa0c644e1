package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RevCBH/crosscritic/internal/config"
	"github.com/RevCBH/crosscritic/internal/debate"
)

// debateOptions holds flags shared by the debate subcommands
type debateOptions struct {
	kind         string
	focus        string
	contextFiles []string
}

// NewDebateCmd creates the debate command group
func NewDebateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debate",
		Short: "Run a multi-round debate between two reviewers",
		Long: `Debate runs rounds in which both reviewers see the plan (or diff) and the
full transcript so far, and respond to each other. Sessions are saved in
the project state directory and capped at debate.max_rounds rounds.

A 'crosscritic review' result counts as round 1, so 'debate continue' can
follow it directly.`,
	}
	cmd.AddCommand(
		newDebateStartCmd(app),
		newDebateContinueCmd(app),
		newDebateStatusCmd(app),
		newDebateResetCmd(app),
	)
	return cmd
}

func addKindFlag(cmd *cobra.Command, opts *debateOptions) {
	cmd.Flags().StringVar(&opts.kind, "type", string(debate.KindPlan), "Debate subject: plan or code")
}

func newDebateStartCmd(app *App) *cobra.Command {
	var opts debateOptions
	cmd := &cobra.Command{
		Use:   "start <plan-file>",
		Short: "Start a debate with round 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.debateStart(cmd, args[0], opts)
		},
	}
	addKindFlag(cmd, &opts)
	cmd.Flags().StringSliceVar(&opts.contextFiles, "context", nil, "Extra context files to send with the prompt")
	return cmd
}

func newDebateContinueCmd(app *App) *cobra.Command {
	var opts debateOptions
	cmd := &cobra.Command{
		Use:   "continue <plan-file>",
		Short: "Run the next debate round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.debateContinue(cmd, args[0], opts)
		},
	}
	addKindFlag(cmd, &opts)
	cmd.Flags().StringVar(&opts.focus, "focus", "", "Ask both reviewers to focus on a topic this round")
	cmd.Flags().StringSliceVar(&opts.contextFiles, "context", nil, "Extra context files to send with the prompt")
	return cmd
}

func newDebateStatusCmd(app *App) *cobra.Command {
	var opts debateOptions
	cmd := &cobra.Command{
		Use:   "status <plan-file>",
		Short: "Show the debate transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.debateStatus(cmd, args[0], opts)
		},
	}
	addKindFlag(cmd, &opts)
	return cmd
}

func newDebateResetCmd(app *App) *cobra.Command {
	var opts debateOptions
	cmd := &cobra.Command{
		Use:   "reset <plan-file>",
		Short: "Delete the saved debate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.debateReset(cmd, args[0], opts)
		},
	}
	addKindFlag(cmd, &opts)
	return cmd
}

// parseKind validates the --type flag
func parseKind(s string) (debate.Kind, error) {
	switch k := debate.Kind(s); k {
	case debate.KindPlan, debate.KindCode:
		return k, nil
	default:
		return "", fmt.Errorf("invalid --type %q (want plan or code)", s)
	}
}

// stateFileFor returns the state file a kind of session is saved in
func stateFileFor(kind debate.Kind) string {
	if kind == debate.KindCode {
		return config.CodeReviewStateFile
	}
	return config.DebateStateFile
}

// debateTarget is the resolved location of a plan's debate
type debateTarget struct {
	kind     debate.Kind
	planPath string
	root     string
	cfg      *config.Config
	store    *debate.Store
}

func (a *App) resolveDebate(planPath, kindFlag string) (*debateTarget, error) {
	kind, err := parseKind(kindFlag)
	if err != nil {
		return nil, err
	}
	abs, err := absPath(planPath)
	if err != nil {
		return nil, err
	}
	root, err := config.ProjectRoot(abs)
	if err != nil {
		return nil, err
	}
	cfg, err := a.loadConfig(root)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return &debateTarget{
		kind:     kind,
		planPath: abs,
		root:     root,
		cfg:      cfg,
		store:    debate.NewStore(cfg.StatePath(stateFileFor(kind))).WithLogger(logger),
	}, nil
}

// subject returns what reviewers are asked about: the plan, or for code
// debates the current diff (the plan when the tree is clean).
func (t *debateTarget) subject(ctx context.Context) (plan, subject string, err error) {
	plan, err = readSubject(t.planPath)
	if err != nil {
		return "", "", err
	}
	if t.kind != debate.KindCode {
		return plan, plan, nil
	}
	diff, err := collectDiff(ctx, t.root)
	if errors.Is(err, errNoChanges) {
		return plan, plan, nil
	}
	if err != nil {
		return "", "", err
	}
	return plan, diff, nil
}

func (a *App) debateStart(cmd *cobra.Command, planPath string, opts debateOptions) error {
	t, err := a.resolveDebate(planPath, opts.kind)
	if err != nil {
		return err
	}
	plan, subject, err := t.subject(cmd.Context())
	if err != nil {
		return err
	}
	contextText, err := readContext(a.stderr, opts.contextFiles)
	if err != nil {
		return err
	}

	prompt := debate.InitialPrompt(t.kind, subject)
	if t.kind == debate.KindCode && subject != plan {
		prompt = debate.CodeReviewPrompt(plan, subject)
	}

	return a.runBatch(cmd, t.cfg, "crosscritic debate round 1", func(ctx context.Context, rt *Runtime, out io.Writer) error {
		ctrl, err := rt.Debate()
		if err != nil {
			return err
		}
		if t.store.Exists() {
			rt.Logger.Info("replacing existing debate", zap.String("path", t.store.Path()))
		}

		session, result, err := ctrl.StartWithPrompt(ctx, t.kind, t.planPath, prompt, contextText, a.reviewOptions()...)
		if err != nil {
			return err
		}
		if err := t.store.Save(session); err != nil {
			return fmt.Errorf("save debate: %w", err)
		}
		rt.Escalate(ctx, t.planPath, result)
		PrintRound(out, session, result)
		if !result.AnySucceeded() {
			return errAllFailed
		}
		return nil
	})
}

func (a *App) debateContinue(cmd *cobra.Command, planPath string, opts debateOptions) error {
	t, err := a.resolveDebate(planPath, opts.kind)
	if err != nil {
		return err
	}
	session, err := t.loadSession()
	if err != nil {
		return err
	}
	if session.Full() {
		return &debate.CapacityError{Max: session.MaxRounds}
	}
	_, subject, err := t.subject(cmd.Context())
	if err != nil {
		return err
	}
	contextText, err := readContext(a.stderr, opts.contextFiles)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("crosscritic debate round %d", session.RoundCount()+1)
	return a.runBatch(cmd, t.cfg, title, func(ctx context.Context, rt *Runtime, out io.Writer) error {
		ctrl, err := rt.Debate()
		if err != nil {
			return err
		}
		result, err := ctrl.Continue(ctx, session, subject, contextText, opts.focus, a.reviewOptions()...)
		if err != nil {
			return err
		}
		if err := t.store.Save(session); err != nil {
			return fmt.Errorf("save debate: %w", err)
		}
		rt.Escalate(ctx, t.planPath, result)
		PrintRound(out, session, result)
		if !result.AnySucceeded() {
			return errAllFailed
		}
		return nil
	})
}

// loadSession loads the saved session. A missing or unreadable file is
// ErrNoSession.
func (t *debateTarget) loadSession() (*debate.Session, error) {
	session := t.store.LoadOrNil()
	if session == nil {
		return nil, fmt.Errorf("%w: run 'crosscritic debate start %s' first", debate.ErrNoSession, t.planPath)
	}
	return session, nil
}

func (a *App) debateStatus(cmd *cobra.Command, planPath string, opts debateOptions) error {
	t, err := a.resolveDebate(planPath, opts.kind)
	if err != nil {
		return err
	}
	session := t.store.LoadOrNil()
	if session == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No debate in progress.")
		return nil
	}
	PrintSessionStatus(cmd.OutOrStdout(), session)
	return nil
}

func (a *App) debateReset(cmd *cobra.Command, planPath string, opts debateOptions) error {
	t, err := a.resolveDebate(planPath, opts.kind)
	if err != nil {
		return err
	}
	removed, err := t.store.Reset()
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintln(cmd.OutOrStdout(), "Debate reset.")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "No debate to reset.")
	}
	return nil
}
