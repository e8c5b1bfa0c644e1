package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/RevCBH/crosscritic/internal/testutil"
)

func withStubRunner(t *testing.T) *testutil.StubRunner {
	t.Helper()
	runner := testutil.NewStubRunner()
	SetDefaultRunner(runner)
	t.Cleanup(func() { SetDefaultRunner(nil) })
	return runner
}

func TestChangesForReview_PrefersStaged(t *testing.T) {
	runner := withStubRunner(t)
	runner.Stub("diff --cached", "+staged\n", nil)

	diff, kind, err := ChangesForReview(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff != "+staged\n" || kind != DiffStaged {
		t.Fatalf("got (%q, %q), want staged diff", diff, kind)
	}
	if runner.CallsFor("diff") != 0 {
		t.Fatalf("unstaged diff should not be read when changes are staged")
	}
}

func TestChangesForReview_FallsBackToUnstaged(t *testing.T) {
	runner := withStubRunner(t)
	runner.Stub("diff --cached", "  \n", nil)
	runner.Stub("diff", "+unstaged\n", nil)

	diff, kind, err := ChangesForReview(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff != "+unstaged\n" || kind != DiffUnstaged {
		t.Fatalf("got (%q, %q), want unstaged diff", diff, kind)
	}
}

func TestChangesForReview_NoChanges(t *testing.T) {
	runner := withStubRunner(t)
	runner.Stub("diff --cached", "", nil)
	runner.Stub("diff", "", nil)

	diff, kind, err := ChangesForReview(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff != "" || kind != DiffNone {
		t.Fatalf("got (%q, %q), want no changes", diff, kind)
	}
}

func TestChangesForReview_Error(t *testing.T) {
	runner := withStubRunner(t)
	runner.Stub("diff --cached", "", errors.New("git diff --cached failed"))

	if _, _, err := ChangesForReview(context.Background(), "/repo"); err == nil {
		t.Fatal("expected error")
	}
}

func TestTopLevel(t *testing.T) {
	runner := withStubRunner(t)
	runner.Stub("rev-parse --show-toplevel", "/repo\n", nil)
	runner.Stub("rev-parse --show-toplevel", "", errors.New("fatal"))

	root, err := TopLevel(context.Background(), "/repo/sub")
	if err != nil || root != "/repo" {
		t.Fatalf("got (%q, %v), want /repo", root, err)
	}

	if _, err := TopLevel(context.Background(), "/tmp"); !errors.Is(err, ErrNotGitRepo) {
		t.Fatalf("expected ErrNotGitRepo, got %v", err)
	}
}

func TestChangesForReview_RealRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = scrubEnv(os.Environ())
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init")
	run("config", "user.name", "Test User")
	run("config", "user.email", "test@example.com")

	file := filepath.Join(dir, "main.go")
	if err := os.WriteFile(file, []byte("package main\n"), 0644); err != nil {
		t.Fatal(err)
	}
	run("add", "main.go")
	run("commit", "-m", "initial")

	ctx := context.Background()
	if _, kind, err := ChangesForReview(ctx, dir); err != nil || kind != DiffNone {
		t.Fatalf("clean repo: got (%q, %v)", kind, err)
	}

	if err := os.WriteFile(file, []byte("package main\n\nfunc main() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, kind, err := ChangesForReview(ctx, dir); err != nil || kind != DiffUnstaged {
		t.Fatalf("modified file: got (%q, %v)", kind, err)
	}

	run("add", "main.go")
	diff, kind, err := ChangesForReview(ctx, dir)
	if err != nil || kind != DiffStaged {
		t.Fatalf("staged file: got (%q, %v)", kind, err)
	}
	if len(diff) == 0 {
		t.Fatal("expected staged diff content")
	}
}

func TestScrubEnv(t *testing.T) {
	env := scrubEnv([]string{"HOME=/root", "GIT_DIR=/elsewhere/.git", "GIT_AUTHOR_NAME=x", "GIT_WORK_TREE=/elsewhere"})
	want := []string{"HOME=/root", "GIT_AUTHOR_NAME=x", "GIT_TERMINAL_PROMPT=0"}
	if len(env) != len(want) {
		t.Fatalf("got %v, want %v", env, want)
	}
	for i := range want {
		if env[i] != want[i] {
			t.Fatalf("got %v, want %v", env, want)
		}
	}
}

func TestCommandError(t *testing.T) {
	base := errors.New("exit status 128")
	err := &CommandError{Args: []string{"diff", "--cached"}, Stderr: "fatal: bad object", Err: base}
	if got := err.Error(); got != "git diff --cached: exit status 128: fatal: bad object" {
		t.Fatalf("unexpected message %q", got)
	}
	if !errors.Is(err, base) {
		t.Fatal("CommandError should unwrap to the exec error")
	}
}
