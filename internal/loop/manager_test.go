package loop

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), ".cross-critic", "loop_state.json"), nil)
}

func TestLoadOrCreate_Defaults(t *testing.T) {
	state := newManager(t).LoadOrCreate()

	assert.Equal(t, 1, state.Iteration)
	assert.Equal(t, 5, state.MaxIterations)
	assert.Equal(t, "plan_review", state.Phase)
	assert.Empty(t, state.LastConflicts)
	assert.False(t, state.Resolved)
	assert.Empty(t, state.History)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	m := newManager(t)

	state := NewState()
	state.Iteration = 3
	state.MaxIterations = 10
	state.Phase = "code_review"
	state.LastConflicts = []string{"security: auth"}
	state.Resolved = true
	m.AppendEvent(state, "review_done", map[string]any{
		"consensus": 0.5,
		"reviewers": []any{"codex-gpt", "claude-sonnet"},
	})
	m.AppendEvent(state, "note", nil)
	m.AppendEvent(state, "advance", map[string]any{"conflicts": 2, "files": []string{"a.go"}})

	require.NoError(t, m.Save(state))
	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
	assert.Equal(t, map[string]any{}, loaded.History[1].Details)
	assert.Equal(t, float64(2), loaded.History[2].Details["conflicts"])
}

func TestLoad_MissingFieldsTakeDefaults(t *testing.T) {
	m := newManager(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(m.Path()), 0755))
	require.NoError(t, os.WriteFile(m.Path(), []byte(`{"iteration": 4, "history": null}`), 0644))

	state, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 4, state.Iteration)
	assert.Equal(t, DefaultMaxIterations, state.MaxIterations)
	assert.Equal(t, DefaultPhase, state.Phase)
	assert.NotNil(t, state.LastConflicts)
	assert.NotNil(t, state.History)
}

func TestLoad_DistinguishesMissingFromCorrupt(t *testing.T) {
	m := newManager(t)

	_, err := m.Load()
	assert.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, os.MkdirAll(filepath.Dir(m.Path()), 0755))
	require.NoError(t, os.WriteFile(m.Path(), []byte("{broken"), 0644))
	_, err = m.Load()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoadOrCreate_SwallowsCorruption(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	path := filepath.Join(t.TempDir(), "loop_state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"iteration": "three"}`), 0644))

	state := NewManager(path, zap.New(core)).LoadOrCreate()

	assert.Equal(t, NewState(), state)
	assert.Equal(t, 1, logs.FilterMessage("ignoring unreadable loop state").Len())
}

func TestSave_Overwrites(t *testing.T) {
	m := newManager(t)
	state := NewState()
	require.NoError(t, m.Save(state))

	state.Iteration = 2
	require.NoError(t, m.Save(state))
	require.NoError(t, m.Save(state))

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Iteration)
}

func TestReset(t *testing.T) {
	m := newManager(t)

	removed, err := m.Reset()
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, m.Save(NewState()))
	removed, err = m.Reset()
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = m.Load()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestAppendEvent_TagsCurrentIterationAndPhase(t *testing.T) {
	m := newManager(t)
	state := NewState()
	state.Iteration = 2
	state.Phase = "implement"

	m.AppendEvent(state, "started", map[string]any{"by": "user"})

	require.Len(t, state.History, 1)
	assert.Equal(t, HistoryEntry{
		Iteration: 2,
		Phase:     "implement",
		Event:     "started",
		Details:   map[string]any{"by": "user"},
	}, state.History[0])

	_, err := m.Load()
	assert.ErrorIs(t, err, fs.ErrNotExist, "AppendEvent must not persist")
}

func TestExhausted(t *testing.T) {
	state := NewState()
	assert.False(t, state.Exhausted())
	state.Iteration = state.MaxIterations
	assert.True(t, state.Exhausted())
}

func TestSave_ReplacesWithoutLeavingTempFiles(t *testing.T) {
	m := newManager(t)
	state := NewState()
	require.NoError(t, m.Save(state))
	state.Iteration = 2
	require.NoError(t, m.Save(state))

	entries, err := os.ReadDir(filepath.Dir(m.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "loop_state.json", entries[0].Name())

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Iteration)
}
