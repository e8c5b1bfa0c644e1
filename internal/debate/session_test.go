package debate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func round(n int, a, b string) Round {
	return Round{Number: n, Entries: []Entry{
		{Reviewer: "codex-gpt", Response: strPtr(a)},
		{Reviewer: "claude-sonnet", Response: strPtr(b)},
	}}
}

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession(KindPlan, "plan.md", []string{"a", "b"}, 0)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, DefaultMaxRounds, s.MaxRounds)
	assert.Equal(t, 0, s.RoundCount())
	assert.Nil(t, s.LatestRound())
	assert.False(t, s.Full())
}

func TestSession_AppendEnforcesOrder(t *testing.T) {
	s := NewSession(KindPlan, "", []string{"a", "b"}, 3)

	require.NoError(t, s.Append(round(1, "x", "y")))
	err := s.Append(round(3, "x", "y"))
	assert.ErrorIs(t, err, ErrRoundOrder)
	assert.Equal(t, 1, s.RoundCount())

	require.NoError(t, s.Append(round(2, "x", "y")))
	assert.Equal(t, 2, s.LatestRound().Number)
}

func TestSession_AppendEnforcesCapacity(t *testing.T) {
	s := NewSession(KindCode, "", []string{"a", "b"}, 2)
	require.NoError(t, s.Append(round(1, "x", "y")))
	require.NoError(t, s.Append(round(2, "x", "y")))
	assert.True(t, s.Full())

	err := s.Append(round(3, "x", "y"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRounds)
	assert.EqualError(t, err, "maximum rounds (2) reached")

	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.Max)
	assert.Equal(t, 2, s.RoundCount())
}

func TestSession_Transcript(t *testing.T) {
	s := NewSession(KindPlan, "", []string{"codex-gpt", "claude-sonnet"}, 5)
	require.NoError(t, s.Append(round(1, "looks fine", "needs auth")))
	require.NoError(t, s.Append(Round{Number: 2, Entries: []Entry{
		{Reviewer: "codex-gpt", Response: strPtr("agreed")},
		{Reviewer: "claude-sonnet", Error: strPtr("claude-sonnet: Timed out after 450s")},
	}}))

	want := "## Round 1\n" +
		"### codex-gpt\n" +
		"looks fine\n" +
		"### claude-sonnet\n" +
		"needs auth\n" +
		"\n" +
		"## Round 2\n" +
		"### codex-gpt\n" +
		"agreed\n" +
		"### claude-sonnet\n" +
		"*Error: claude-sonnet: Timed out after 450s*\n"
	assert.Equal(t, want, s.Transcript())
}

func TestSession_TranscriptEmpty(t *testing.T) {
	s := NewSession(KindPlan, "", []string{"a", "b"}, 5)
	assert.Equal(t, "", s.Transcript())
}

func TestEntry_Text(t *testing.T) {
	assert.Equal(t, "ok", Entry{Response: strPtr("ok")}.Text())
	assert.Equal(t, "*Error: boom*", Entry{Error: strPtr("boom")}.Text())
	assert.Equal(t, "*Error: unknown error*", Entry{}.Text())
	assert.False(t, Entry{Error: strPtr("boom")}.Succeeded())
}
