package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/crosscritic/internal/provider"
)

// isolate points the user-level config at an empty dir and clears overrides.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("CROSSCRITIC_HOME", t.TempDir())
	for _, o := range envOverrides {
		t.Setenv(o.envVar, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultStateDir), cfg.StateDir)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DeadlinePerTask, cfg.Review.DeadlineMode)
	assert.Equal(t, DefaultMaxRounds, cfg.Debate.MaxRounds)
	assert.Equal(t, DefaultMaxIterations, cfg.Loop.MaxIterations)
	require.Len(t, cfg.Review.Reviewers, 2)
	assert.Equal(t, provider.ProviderCodex, cfg.Review.Reviewers[0].Type)
	assert.Equal(t, provider.ProviderClaude, cfg.Review.Reviewers[1].Type)

	call, err := cfg.CallTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, call)

	batch, err := cfg.BatchTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 450*time.Second, batch)
}

func TestLoadConfig_ProjectFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `
state_dir: /tmp/cc-state
review:
  call_timeout: 60s
  batch_timeout: 75s
  deadline_mode: shared
  reviewers:
    - type: claude
      model: opus
    - type: opencode
      name: oc
debate:
  max_rounds: 3
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cc-state", cfg.StateDir)
	assert.Equal(t, DeadlineShared, cfg.Review.DeadlineMode)
	assert.Equal(t, 3, cfg.Debate.MaxRounds)
	require.Len(t, cfg.Review.Reviewers, 2)
	assert.Equal(t, "opus", cfg.Review.Reviewers[0].Model)

	batch, err := cfg.BatchTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 75*time.Second, batch)
}

func TestLoadConfig_GlobalUnderProject(t *testing.T) {
	isolate(t)
	home := t.TempDir()
	t.Setenv("CROSSCRITIC_HOME", home)
	writeFile(t, filepath.Join(home, "config.yaml"), `
log_level: debug
providers:
  codex:
    command: /opt/codex
`)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "log_level: warn\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/opt/codex", GetProviderCommand(cfg, provider.ProviderCodex))
	assert.Equal(t, DefaultClaudeCommand, GetProviderCommand(cfg, provider.ProviderClaude))
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CROSSCRITIC_LOG_LEVEL", "error")
	t.Setenv("CROSSCRITIC_CALL_TIMEOUT", "10s")
	t.Setenv("CROSSCRITIC_DEADLINE_MODE", "shared")
	t.Setenv("CROSSCRITIC_CLAUDE_CMD", "/usr/local/bin/claude")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, DeadlineShared, cfg.Review.DeadlineMode)
	assert.Equal(t, "/usr/local/bin/claude", GetProviderCommand(cfg, provider.ProviderClaude))

	batch, err := cfg.BatchTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, batch)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "review: [unclosed")

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Review.CallTimeout = "soon"
	cfg.Review.DeadlineMode = "whenever"
	cfg.Review.Reviewers = []ReviewerConfig{{Type: "gemini"}, {Type: provider.ProviderClaude, Model: "gpt"}}
	cfg.Debate.MaxRounds = 0
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)

	fields := map[string]bool{}
	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	for _, e := range joined.Unwrap() {
		var ve *ValidationError
		require.True(t, errors.As(e, &ve))
		fields[ve.Field] = true
	}

	assert.True(t, fields["review.call_timeout"])
	assert.True(t, fields["review.deadline_mode"])
	assert.True(t, fields["review.reviewers[0].type"])
	assert.True(t, fields["review.reviewers[1].model"])
	assert.True(t, fields["debate.max_rounds"])
	assert.True(t, fields["log_level"])
}

func TestValidate_Escalate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultMinSeverity, cfg.Escalate.MinSeverity)
	require.NoError(t, cfg.Validate())

	cfg.Escalate.Backends = []string{"terminal", "slack", "pager"}
	cfg.Escalate.MinSeverity = "panic"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escalate.slack_webhook")
	assert.Contains(t, err.Error(), "escalate.backends[2]")
	assert.Contains(t, err.Error(), "escalate.min_severity")

	cfg.Escalate.Backends = []string{"slack"}
	cfg.Escalate.SlackWebhook = "https://hooks.slack.example/T000"
	cfg.Escalate.MinSeverity = "critical"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_NoReviewers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Review.Reviewers = nil

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review.reviewers")
}

func TestReviewerProviders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Review.CallTimeout = "42s"
	cfg.Review.Reviewers = append(cfg.Review.Reviewers, ReviewerConfig{Type: provider.ProviderOpenCode, Command: "/bin/oc"})

	got, err := cfg.ReviewerProviders()
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, provider.ProviderCodex, got[0].Type)
	assert.Equal(t, DefaultCodexCommand, got[0].Command)
	assert.Equal(t, 42*time.Second, got[0].Timeout)
	assert.Equal(t, 2*time.Second, got[0].RetryInterval)
	assert.Equal(t, "sonnet", got[1].Model)
	assert.Equal(t, "/bin/oc", got[2].Command)
}

func TestProjectRoot(t *testing.T) {
	dir := t.TempDir()

	root, err := ProjectRoot(filepath.Join(dir, "plan.md"))
	require.NoError(t, err)
	assert.Equal(t, dir, root)

	root, err = ProjectRoot(filepath.Join(dir, DefaultStateDir, "plan.md"))
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}
