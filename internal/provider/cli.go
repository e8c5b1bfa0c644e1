package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// commandSpec describes how one CLI is invoked.
type commandSpec struct {
	// kind labels error messages ("claude", "codex", ...)
	kind string

	// args builds the argument list. outputFile is empty unless
	// readsOutputFile is set.
	args func(prompt, outputFile string) []string

	// readsOutputFile makes the reviewer pass a temp file to the CLI and
	// read the response from it instead of stdout.
	readsOutputFile bool

	// probeArgs, when set, are run once by Available to confirm the CLI
	// is authenticated, not just installed.
	probeArgs []string
}

// probeTimeout bounds the availability probe call.
const probeTimeout = 30 * time.Second

// CLIReviewer implements Reviewer by shelling out to a reviewer CLI.
// Each Call makes up to maxRetries attempts; attempts are paced by a
// limiter so a failing CLI is not hammered.
type CLIReviewer struct {
	name          string
	command       string
	spec          commandSpec
	timeout       time.Duration
	maxRetries    int
	retryInterval time.Duration
	runner        Runner
	logger        *zap.Logger
}

func newCLIReviewer(name, command string, spec commandSpec, cfg Config, logger *zap.Logger) *CLIReviewer {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLIReviewer{
		name:          name,
		command:       command,
		spec:          spec,
		timeout:       cfg.Timeout,
		maxRetries:    cfg.MaxRetries,
		retryInterval: cfg.RetryInterval,
		runner:        osRunner{},
		logger:        logger.With(zap.String("component", "reviewer"), zap.String("reviewer", name)),
	}
}

// WithRunner replaces the command runner. Used by tests.
func (r *CLIReviewer) WithRunner(runner Runner) *CLIReviewer {
	r.runner = runner
	return r
}

// Name returns the reviewer name
func (r *CLIReviewer) Name() string {
	return r.name
}

// Command returns the CLI executable this reviewer invokes
func (r *CLIReviewer) Command() string {
	return r.command
}

// Available checks that the CLI is on PATH and, for CLIs that need it,
// that a trivial probe call succeeds.
func (r *CLIReviewer) Available(ctx context.Context) bool {
	if _, err := lookPath(r.command); err != nil {
		return false
	}
	if len(r.spec.probeArgs) == 0 {
		return true
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if _, err := r.runner.Run(probeCtx, r.command, r.spec.probeArgs...); err != nil {
		r.logger.Debug("availability probe failed", zap.Error(err))
		return false
	}
	return true
}

// Call invokes the CLI with the composed prompt, retrying failed attempts.
// Returns a *CallError once every attempt has failed.
func (r *CLIReviewer) Call(ctx context.Context, prompt, contextText string) (*Response, error) {
	fullPrompt := ComposePrompt(prompt, contextText)

	limit := rate.Inf
	if r.retryInterval > 0 {
		limit = rate.Every(r.retryInterval)
	}
	limiter := rate.NewLimiter(limit, 1)

	var lastErr error
	attempts := 0
	for attempts < r.maxRetries {
		// The first attempt spends the initial token; later ones wait.
		if err := limiter.Wait(ctx); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		attempts++

		content, err := r.invoke(ctx, fullPrompt)
		if err == nil {
			return &Response{Content: content, Reviewer: r.name}, nil
		}

		lastErr = err
		r.logger.Debug("reviewer attempt failed",
			zap.Int("attempt", attempts),
			zap.Int("max_retries", r.maxRetries),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, &CallError{Reviewer: r.name, Attempts: attempts, Err: lastErr}
}

// invoke runs a single attempt under the per-call timeout.
func (r *CLIReviewer) invoke(ctx context.Context, fullPrompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	outputFile := ""
	if r.spec.readsOutputFile {
		f, err := os.CreateTemp("", "crosscritic-*.txt")
		if err != nil {
			return "", fmt.Errorf("create output file: %w", err)
		}
		outputFile = f.Name()
		f.Close()
		defer os.Remove(outputFile)
	}

	stdout, err := r.runner.Run(callCtx, r.command, r.spec.args(fullPrompt, outputFile)...)
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", fmt.Errorf("%s %w after %ss", r.spec.kind, ErrTimeout, FormatSeconds(r.timeout))
	}
	if err != nil {
		return "", err
	}

	content := stdout
	if r.spec.readsOutputFile {
		data, err := os.ReadFile(outputFile)
		if err != nil {
			return "", fmt.Errorf("read %s output: %w", r.spec.kind, err)
		}
		content = string(data)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%s returned an %w", r.spec.kind, ErrEmptyOutput)
	}
	return content, nil
}

// FormatSeconds renders a duration as whole seconds when possible,
// otherwise as the shortest decimal ("450", "0.05").
func FormatSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		return strconv.FormatInt(int64(d/time.Second), 10)
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

var _ Reviewer = (*CLIReviewer)(nil)
