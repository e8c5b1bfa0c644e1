package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
)

// Runner executes git commands.
type Runner interface {
	Exec(ctx context.Context, dir string, args ...string) (string, error)
}

// CommandError reports a git invocation that exited unsuccessfully.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// redirectVars point git at a repository other than the one under dir.
// Hooks and editors export them, so they are stripped before every call.
var redirectVars = map[string]bool{
	"GIT_DIR":                          true,
	"GIT_WORK_TREE":                    true,
	"GIT_INDEX_FILE":                   true,
	"GIT_COMMON_DIR":                   true,
	"GIT_PREFIX":                       true,
	"GIT_OBJECT_DIRECTORY":             true,
	"GIT_ALTERNATE_OBJECT_DIRECTORIES": true,
	"GIT_CEILING_DIRECTORIES":          true,
}

// scrubEnv drops redirect variables from environ and disables
// interactive credential prompts.
func scrubEnv(environ []string) []string {
	env := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		key, _, _ := strings.Cut(kv, "=")
		if redirectVars[key] {
			continue
		}
		env = append(env, kv)
	}
	return append(env, "GIT_TERMINAL_PROMPT=0")
}

type commandRunner struct{}

func (commandRunner) Exec(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = scrubEnv(os.Environ())

	out, err := cmd.Output()
	if err == nil {
		return string(out), nil
	}
	cerr := &CommandError{Args: args, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cerr.Stderr = strings.TrimSpace(string(exitErr.Stderr))
	}
	return "", cerr
}

type runnerHolder struct{ Runner }

var current atomic.Pointer[runnerHolder]

func init() {
	current.Store(&runnerHolder{commandRunner{}})
}

// DefaultRunner returns the runner used by package functions.
func DefaultRunner() Runner {
	return current.Load().Runner
}

// SetDefaultRunner swaps the package runner; nil restores the real git
// binary. Tests use it to stub git.
func SetDefaultRunner(runner Runner) {
	if runner == nil {
		runner = commandRunner{}
	}
	current.Store(&runnerHolder{runner})
}

func gitExec(ctx context.Context, dir string, args ...string) (string, error) {
	return DefaultRunner().Exec(ctx, dir, args...)
}
