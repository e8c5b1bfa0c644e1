package git

import (
	"context"
	"errors"
	"strings"
)

// ErrNotGitRepo indicates the directory is not inside a git work tree.
var ErrNotGitRepo = errors.New("not a git repository")

// Diff selects which changes ChangesForReview returned.
type Diff string

const (
	DiffNone     Diff = ""
	DiffStaged   Diff = "staged"
	DiffUnstaged Diff = "unstaged"
)

// ChangesForReview returns the staged diff, or the unstaged diff when
// nothing is staged. The returned Diff is DiffNone when there are no
// changes at all.
func ChangesForReview(ctx context.Context, dir string) (string, Diff, error) {
	staged, err := gitExec(ctx, dir, "diff", "--cached")
	if err != nil {
		return "", DiffNone, err
	}
	if strings.TrimSpace(staged) != "" {
		return staged, DiffStaged, nil
	}

	unstaged, err := gitExec(ctx, dir, "diff")
	if err != nil {
		return "", DiffNone, err
	}
	if strings.TrimSpace(unstaged) != "" {
		return unstaged, DiffUnstaged, nil
	}
	return "", DiffNone, nil
}

// TopLevel returns the root of the work tree containing dir.
func TopLevel(ctx context.Context, dir string) (string, error) {
	out, err := gitExec(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", ErrNotGitRepo
	}
	return strings.TrimSpace(out), nil
}
