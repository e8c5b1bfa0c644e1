package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RevCBH/crosscritic/internal/config"
	"github.com/RevCBH/crosscritic/internal/loop"
	"github.com/RevCBH/crosscritic/internal/metrics"
)

// defaultHistoryLimit is how many history entries loop status shows
const defaultHistoryLimit = 10

// NewLoopCmd creates the loop command group
func NewLoopCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Inspect and update the review loop checkpoint",
		Long: `The loop checkpoint records which iteration and phase a review-and-revise
workflow is in, the conflicts it saw last, and a log of events. It lives in
the project state directory and survives restarts.`,
	}
	cmd.AddCommand(
		newLoopStatusCmd(app),
		newLoopRecordCmd(app),
		newLoopAdvanceCmd(app),
		newLoopResetCmd(app),
	)
	return cmd
}

func newLoopStatusCmd(app *App) *cobra.Command {
	var (
		jsonOut bool
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the checkpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withLoop(cmd, false, func(lc *loopContext) error {
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), lc.state)
				}
				PrintLoopState(cmd.OutOrStdout(), lc.state, limit)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the checkpoint as JSON")
	cmd.Flags().IntVar(&limit, "history", defaultHistoryLimit, "Number of recent history entries to show (0 for all)")
	return cmd
}

func newLoopRecordCmd(app *App) *cobra.Command {
	var (
		details  []string
		resolved bool
	)
	cmd := &cobra.Command{
		Use:   "record <event>",
		Short: "Append an event to the checkpoint history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseDetails(details)
			if err != nil {
				return err
			}
			return app.withLoop(cmd, true, func(lc *loopContext) error {
				lc.manager.AppendEvent(lc.state, args[0], parsed)
				if cmd.Flags().Changed("resolved") {
					lc.state.Resolved = resolved
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %q at iteration %d (%s).\n", args[0], lc.state.Iteration, lc.state.Phase)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&details, "detail", nil, "Event detail as key=value (repeatable)")
	cmd.Flags().BoolVar(&resolved, "resolved", false, "Mark the loop resolved (or not, with --resolved=false)")
	return cmd
}

func newLoopAdvanceCmd(app *App) *cobra.Command {
	var (
		phase     string
		conflicts []string
	)
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Move to the next iteration",
		Long: `Advance increments the iteration, optionally switching phase and
recording the conflicts that remain. It refuses once the last iteration
has been reached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withLoop(cmd, true, func(lc *loopContext) error {
				s := lc.state
				if s.Exhausted() {
					return fmt.Errorf("iteration %d is the last of %d; reset the loop or raise loop.max_iterations", s.Iteration, s.MaxIterations)
				}
				s.Iteration++
				if phase != "" {
					s.Phase = phase
				}
				if cmd.Flags().Changed("conflict") {
					s.LastConflicts = conflicts
				}
				s.Resolved = false
				lc.manager.AppendEvent(s, "advance", map[string]any{"conflicts": len(s.LastConflicts)})
				fmt.Fprintf(cmd.OutOrStdout(), "Iteration %d of %d (%s).\n", s.Iteration, s.MaxIterations, s.Phase)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&phase, "phase", "", "Phase for the new iteration")
	cmd.Flags().StringArrayVar(&conflicts, "conflict", nil, "Unresolved conflict carried into the new iteration (repeatable)")
	return cmd
}

func newLoopResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the checkpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := app.projectDir(cmd)
			if err != nil {
				return err
			}
			cfg, err := app.loadConfig(root)
			if err != nil {
				return err
			}
			removed, err := loop.NewManager(cfg.StatePath(config.LoopStateFile), nil).Reset()
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintln(cmd.OutOrStdout(), "Loop state reset.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No loop state to reset.")
			}
			return nil
		},
	}
}

// loopContext is the loaded checkpoint handed to loop subcommands
type loopContext struct {
	cfg     *config.Config
	logger  *zap.Logger
	manager *loop.Manager
	state   *loop.State
}

// withLoop loads the checkpoint for the project, runs fn and, when save is
// set, writes the checkpoint back.
func (a *App) withLoop(cmd *cobra.Command, save bool, fn func(*loopContext) error) error {
	root, err := a.projectDir(cmd)
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig(root)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, nil)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	manager := loop.NewManager(cfg.StatePath(config.LoopStateFile), logger)
	_, statErr := os.Stat(manager.Path())
	state := manager.LoadOrCreate()
	if statErr != nil {
		state.MaxIterations = cfg.Loop.MaxIterations
	}

	lc := &loopContext{cfg: cfg, logger: logger, manager: manager, state: state}
	if err := fn(lc); err != nil {
		return err
	}
	if save {
		if err := manager.Save(state); err != nil {
			return err
		}
	}
	return a.exportLoopMetrics(lc)
}

// exportLoopMetrics writes the iteration gauge to the metrics textfile
func (a *App) exportLoopMetrics(lc *loopContext) error {
	if !lc.cfg.Metrics.Enabled || lc.cfg.Metrics.Textfile == "" {
		return nil
	}
	collector := metrics.NewCollector(metricsNamespace, lc.logger)
	collector.SetLoopIteration(lc.state.Iteration)
	if err := collector.WriteTextfile(lc.cfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// projectDir resolves the project root for commands without a subject file
func (a *App) projectDir(cmd *cobra.Command) (string, error) {
	dir, err := a.workDir()
	if err != nil {
		return "", err
	}
	return repoRoot(cmd.Context(), dir, "")
}

// parseDetails turns key=value pairs into history details. Integer and
// boolean values keep their type.
func parseDetails(pairs []string) (map[string]any, error) {
	details := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --detail %q (want key=value)", pair)
		}
		if n, err := strconv.Atoi(value); err == nil {
			details[key] = n
		} else if b, err := strconv.ParseBool(value); err == nil {
			details[key] = b
		} else {
			details[key] = value
		}
	}
	return details, nil
}
