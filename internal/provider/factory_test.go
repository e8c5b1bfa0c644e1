package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig_ClaudeDefault(t *testing.T) {
	r, err := FromConfig(Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet", r.Name())
}

func TestFromConfig_Codex(t *testing.T) {
	r, err := FromConfig(Config{Type: ProviderCodex}, nil)
	require.NoError(t, err)
	assert.Equal(t, "codex-gpt", r.Name())
}

func TestFromConfig_OpenCode(t *testing.T) {
	r, err := FromConfig(Config{Type: ProviderOpenCode, Name: "oc"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "oc", r.Name())
}

func TestFromConfig_CustomCommand(t *testing.T) {
	r, err := FromConfig(Config{Type: ProviderClaude, Command: "/usr/local/bin/claude"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/claude", r.(*CLIReviewer).Command())
}

func TestFromConfig_Unknown(t *testing.T) {
	_, err := FromConfig(Config{Type: "gemini"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider type: gemini")
}

func TestFromConfigs_IndexesError(t *testing.T) {
	_, err := FromConfigs([]Config{{Type: ProviderCodex}, {Type: ProviderClaude, Model: "nope"}}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownModel))
	assert.Contains(t, err.Error(), "reviewer 1")
}

func TestAvailable_MissingBinary(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(string) (string, error) { return "", errors.New("not found") }

	r := NewCodex(Config{}, nil)
	assert.False(t, r.Available(context.Background()))
}

func TestAvailable_ProbeFails(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(file string) (string, error) { return "/bin/" + file, nil }

	r := NewOpenCode(Config{}, nil).WithRunner(runnerFunc(func(context.Context, string, ...string) (string, error) {
		return "", &ExecutionError{Command: "opencode", ExitCode: 1}
	}))
	assert.False(t, r.Available(context.Background()))

	r.WithRunner(runnerFunc(func(context.Context, string, ...string) (string, error) {
		return "hi", nil
	}))
	assert.True(t, r.Available(context.Background()))
}

func TestStatic_DelayHonorsContext(t *testing.T) {
	s := &Static{ReviewerName: "slow", Content: "x", Delay: 1e9}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Call(ctx, "p", "")
	assert.ErrorIs(t, err, context.Canceled)
}

type runnerFunc func(ctx context.Context, name string, args ...string) (string, error)

func (f runnerFunc) Run(ctx context.Context, name string, args ...string) (string, error) {
	return f(ctx, name, args...)
}
