package debate

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cross-critic", "debate_state.json")
	store := NewStore(path)

	s := NewSession(KindPlan, "docs/plan.md", []string{"codex-gpt", "claude-sonnet"}, 4)
	require.NoError(t, s.Append(Round{Number: 1, Entries: []Entry{
		{Reviewer: "codex-gpt", Response: strPtr("ok")},
		{Reviewer: "claude-sonnet", Error: strPtr("claude-sonnet: boom")},
	}}))
	require.NoError(t, store.Save(s))
	assert.True(t, store.Exists())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debate_state.json")
	s := NewSession(KindCode, "", []string{"a", "b"}, 5)
	require.NoError(t, s.Append(round(1, "x", "y")))
	require.NoError(t, NewStore(path).Save(s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "code", raw["review_type"])
	assert.Equal(t, "a", raw["reviewer_a"])
	assert.EqualValues(t, 5, raw["max_rounds"])

	rounds := raw["rounds"].([]any)
	require.Len(t, rounds, 1)
	r := rounds[0].(map[string]any)
	assert.EqualValues(t, 1, r["round_number"])
	assert.Equal(t, "x", r["reviewer_a_response"])
	assert.Nil(t, r["reviewer_a_error"])
	assert.Contains(t, r, "reviewer_b_error")
}

func TestStore_LoadMissing(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "none.json")).Load()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"invalid json": "{not json",
		"unknown type": `{"review_type":"essay","rounds":[]}`,
		"bad order":    `{"review_type":"plan","rounds":[{"round_number":2}]}`,
		"over cap":     `{"review_type":"plan","max_rounds":1,"rounds":[{"round_number":1},{"round_number":2}]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			_, err := NewStore(path).Load()
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestStore_LoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"review_type":"plan","rounds":null}`), 0644))

	s, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"reviewer_a", "reviewer_b"}, s.Reviewers)
	assert.Equal(t, DefaultMaxRounds, s.MaxRounds)
	assert.Equal(t, 0, s.RoundCount())
}

func TestStore_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	store := NewStore(path)

	removed, err := store.Reset()
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, store.Save(NewSession(KindPlan, "", []string{"a", "b"}, 5)))
	removed, err = store.Reset()
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, store.Exists())
}

func TestStore_SaveRequiresTwoReviewers(t *testing.T) {
	err := NewStore(filepath.Join(t.TempDir(), "s.json")).Save(NewSession(KindPlan, "", []string{"a"}, 5))
	assert.ErrorIs(t, err, ErrReviewerCount)
}

func TestStore_LoadOrNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debate_state.json")
	store := NewStore(path).WithLogger(nil)
	assert.Nil(t, store.LoadOrNil())

	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))
	assert.Nil(t, store.LoadOrNil())

	s := NewSession(KindPlan, "plan.md", []string{"a", "b"}, 5)
	require.NoError(t, store.Save(s))
	assert.Equal(t, s, store.LoadOrNil())
}
