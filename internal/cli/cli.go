package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RevCBH/crosscritic/internal/config"
	"github.com/RevCBH/crosscritic/internal/provider"
)

// VersionInfo holds build metadata set via ldflags
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	dir          string
	verbose      bool
	plain        bool
	jsonEvents   bool
	timeout      time.Duration
	deadlineMode string
}

// App represents the CLI application with all wired dependencies
type App struct {
	// Root command
	rootCmd *cobra.Command

	opts        globalOptions
	versionInfo VersionInfo

	// newReviewers builds reviewers from config. Replaced in tests.
	newReviewers func(cfg *config.Config, logger *zap.Logger) ([]provider.Reviewer, error)

	// stderr receives progress output and events
	stderr io.Writer
}

// New creates a new CLI application
func New() *App {
	app := &App{
		newReviewers: reviewersFromConfig,
		stderr:       os.Stderr,
	}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application. SIGINT and SIGTERM cancel the running
// command's context.
func (a *App) Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := newInterruptWatcher(cancel, nil)
	watcher.watch(true)
	defer watcher.stop()

	return a.rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// setupRootCmd configures the root Cobra command
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "crosscritic",
		Short: "Cross-review plans and code with several AI reviewers",
		Long: `crosscritic sends a plan or a diff to several reviewer CLIs at once,
scores how much they agree, flags where they disagree, and lets them
debate each other over multiple rounds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := a.rootCmd.PersistentFlags()
	flags.StringVarP(&a.opts.dir, "dir", "C", "", "Project directory (default: current directory)")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVar(&a.opts.plain, "plain", false, "Disable the interactive progress view")
	flags.BoolVar(&a.opts.jsonEvents, "json-events", false, "Write lifecycle events as JSON lines to stderr")
	flags.DurationVar(&a.opts.timeout, "timeout", 0, "Override the batch timeout (e.g. 5m)")
	flags.StringVar(&a.opts.deadlineMode, "deadline-mode", "", "Batch deadline mode: per_task or shared")

	a.rootCmd.AddCommand(
		NewReviewCmd(a),
		NewMultiCmd(a),
		NewDebateCmd(a),
		NewLoopCmd(a),
		NewVersionCmd(a),
	)
}

// workDir returns the --dir flag or the current directory
func (a *App) workDir() (string, error) {
	if a.opts.dir != "" {
		return a.opts.dir, nil
	}
	return os.Getwd()
}
