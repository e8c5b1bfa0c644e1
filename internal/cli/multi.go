package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/RevCBH/crosscritic/internal/config"
)

type multiOptions struct {
	prompt       string
	contextFiles []string
	jsonOut      bool
}

// NewMultiCmd creates the multi command
func NewMultiCmd(app *App) *cobra.Command {
	var opts multiOptions
	cmd := &cobra.Command{
		Use:   "multi [file]",
		Short: "Send a prompt or file to every configured reviewer",
		Long: `Multi fans the prompt out to all configured reviewers, however many there
are, and prints each response with a synthesized summary and consensus
score. Nothing is saved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.multi(cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.prompt, "prompt", "p", "", "Prompt text (instead of a file)")
	cmd.Flags().StringSliceVar(&opts.contextFiles, "context", nil, "Extra context files to send with the prompt")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the result as JSON")
	return cmd
}

func (a *App) multi(cmd *cobra.Command, args []string, opts multiOptions) error {
	prompt := opts.prompt
	root, err := a.workDir()
	if err != nil {
		return err
	}

	switch {
	case len(args) == 1 && prompt != "":
		return fmt.Errorf("give either a file or --prompt, not both")
	case len(args) == 1:
		if prompt, err = readSubject(args[0]); err != nil {
			return err
		}
		if root, err = config.ProjectRoot(args[0]); err != nil {
			return err
		}
	case prompt == "":
		return fmt.Errorf("nothing to review: give a file or --prompt")
	}

	cfg, err := a.loadConfig(root)
	if err != nil {
		return err
	}
	contextText, err := readContext(a.stderr, opts.contextFiles)
	if err != nil {
		return err
	}

	return a.runBatch(cmd, cfg, "crosscritic multi", func(ctx context.Context, rt *Runtime, out io.Writer) error {
		result, err := rt.Caller.Review(ctx, prompt, contextText, a.reviewOptions()...)
		if err != nil {
			return err
		}

		label := "prompt"
		if len(args) == 1 {
			label = args[0]
		}
		rt.Escalate(ctx, label, result)

		if opts.jsonOut {
			if err := writeJSON(out, result); err != nil {
				return err
			}
		} else {
			PrintBatch(out, result)
		}

		if !result.AnySucceeded() {
			return errAllFailed
		}
		return nil
	})
}
