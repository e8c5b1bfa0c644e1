package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes reviewer CLI commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// osRunner executes real commands via exec.CommandContext.
type osRunner struct{}

func (osRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &ExecutionError{
				Command:  name,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}

	return stdout.String(), nil
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath
