package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/RevCBH/crosscritic/internal/cli/tui"
	"github.com/RevCBH/crosscritic/internal/config"
)

// batchFunc does a command's work. Results go to out, which is only
// written to the terminal once the progress view has exited.
type batchFunc func(ctx context.Context, rt *Runtime, out io.Writer) error

// useTUI reports whether the interactive progress view should run
func (a *App) useTUI() bool {
	if a.opts.plain || a.opts.jsonEvents {
		return false
	}
	f, ok := a.stderr.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runBatch wires a runtime for cfg and runs fn with progress reporting:
// the interactive view on a terminal, plain lines otherwise.
func (a *App) runBatch(cmd *cobra.Command, cfg *config.Config, title string, fn batchFunc) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.useTUI() {
		return a.runWithTUI(ctx, cmd.OutOrStdout(), cfg, title, fn)
	}

	logger, err := newLogger(cfg, nil)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	rt, err := a.wire(cfg, logger)
	if err != nil {
		return err
	}
	if !a.opts.jsonEvents {
		rt.Events.Subscribe(ProgressHandler(a.stderr))
	}

	var out bytes.Buffer
	runErr := fn(ctx, rt, &out)
	closeErr := rt.Close()
	if _, err := io.Copy(cmd.OutOrStdout(), &out); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	return closeErr
}

func (a *App) runWithTUI(ctx context.Context, stdout io.Writer, cfg *config.Config, title string, fn batchFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(title, nil)
	program := tea.NewProgram(model, tea.WithOutput(a.stderr))
	logWriter := tui.NewLogWriter(program)
	defer logWriter.Close()

	logger, err := newLogger(cfg, logWriter)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	rt, err := a.wire(cfg, logger)
	if err != nil {
		return err
	}
	model.SetReviewers(rt.ReviewerNames())

	bridge := tui.NewBridge(program)
	rt.Events.Subscribe(bridge.Handler())

	var out bytes.Buffer
	errCh := make(chan error, 1)
	go func() {
		err := fn(ctx, rt, &out)
		if closeErr := rt.Close(); err == nil {
			err = closeErr
		}
		bridge.SendDone()
		errCh <- err
	}()

	if _, runErr := program.Run(); runErr != nil {
		cancel()
		<-errCh
		return fmt.Errorf("progress view: %w", runErr)
	}
	if model.Quitting {
		cancel()
	}

	err = <-errCh
	if _, copyErr := io.Copy(stdout, &out); copyErr != nil && err == nil {
		err = copyErr
	}
	return err
}
