package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RevCBH/crosscritic/internal/config"
	"github.com/RevCBH/crosscritic/internal/git"
)

// errAllFailed is returned after output has been written when no reviewer
// produced a response
var errAllFailed = errors.New("all reviewers failed")

// errNoChanges short-circuits code reviews of a clean work tree
var errNoChanges = errors.New("no changes to review")

// readContext joins context files as "## <path>" sections separated by a
// blank line. Missing files are skipped with a warning on warn.
func readContext(warn io.Writer, paths []string) (string, error) {
	var parts []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(warn, "Warning: context file not found: %s\n", p)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read context %s: %w", p, err)
		}
		parts = append(parts, fmt.Sprintf("## %s\n%s", p, data))
	}
	return strings.Join(parts, "\n\n"), nil
}

// readSubject reads a plan or other subject file
func readSubject(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// repoRoot resolves the project root for work on the current diff: the
// subject file's project when one is given, else the enclosing git work
// tree, else dir itself.
func repoRoot(ctx context.Context, dir, subjectPath string) (string, error) {
	if subjectPath != "" {
		return config.ProjectRoot(subjectPath)
	}
	if top, err := git.TopLevel(ctx, dir); err == nil {
		return top, nil
	}
	return dir, nil
}

// collectDiff returns the diff to review in root or errNoChanges
func collectDiff(ctx context.Context, root string) (string, error) {
	diff, kind, err := git.ChangesForReview(ctx, root)
	if err != nil {
		return "", fmt.Errorf("collect diff: %w", err)
	}
	if kind == git.DiffNone {
		return "", errNoChanges
	}
	return diff, nil
}

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// absPath makes subject paths stable across working directories
func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}
