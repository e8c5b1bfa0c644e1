package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectConflicts_SecurityAsymmetry(t *testing.T) {
	conflicts := DetectConflicts(
		&NamedText{Name: "codex-gpt", Text: "SQL injection risk"},
		&NamedText{Name: "claude-sonnet", Text: "looks fine"},
		DefaultVocabulary(),
	)

	require.Len(t, conflicts, 1)
	c := conflicts[0]
	assert.Equal(t, CategorySecurity, c.Category)
	assert.Equal(t, "injection", c.Keyword)
	assert.Equal(t, "Mentioned security concern", c.OpinionA)
	assert.Equal(t, "No security concern mentioned", c.OpinionB)
	assert.Equal(t, "Review security concern from: codex-gpt", c.Recommendation)
}

func TestDetectConflicts_RaisedByB(t *testing.T) {
	conflicts := DetectConflicts(
		&NamedText{Name: "a", Text: "fine"},
		&NamedText{Name: "b", Text: "CSRF token missing"},
		DefaultVocabulary(),
	)

	require.Len(t, conflicts, 1)
	assert.Equal(t, "csrf", conflicts[0].Keyword)
	assert.Equal(t, "No security concern mentioned", conflicts[0].OpinionA)
	assert.Equal(t, "Mentioned security concern", conflicts[0].OpinionB)
	assert.Equal(t, "Review security concern from: b", conflicts[0].Recommendation)
}

func TestDetectConflicts_FirstDifferenceOnly(t *testing.T) {
	// Both mention security; they differ on vulnerability and xss.
	conflicts := DetectConflicts(
		&NamedText{Name: "a", Text: "security: vulnerability found"},
		&NamedText{Name: "b", Text: "security: xss"},
		DefaultVocabulary(),
	)

	require.Len(t, conflicts, 1)
	assert.Equal(t, "vulnerability", conflicts[0].Keyword)
}

func TestDetectConflicts_None(t *testing.T) {
	vocab := DefaultVocabulary()

	assert.Empty(t, DetectConflicts(&NamedText{Text: "slow loop"}, &NamedText{Text: "naming"}, vocab))
	assert.Empty(t, DetectConflicts(&NamedText{Text: "xss"}, &NamedText{Text: "XSS here"}, vocab))
	assert.Nil(t, DetectConflicts(nil, &NamedText{Text: "injection"}, vocab))
	assert.Nil(t, DetectConflicts(&NamedText{Text: "injection"}, nil, vocab))
}

func TestCommonConcerns(t *testing.T) {
	vocab := DefaultVocabulary()

	common := CommonConcerns("security and memory and a bug", "memory, security, design, bug", vocab)
	assert.Equal(t, []string{"security", "memory"}, common)
	assert.Equal(t, "Both reviewers mentioned: security, memory", FormatCommonConcerns(common))

	assert.Empty(t, CommonConcerns("architecture", "architecture", vocab))
	assert.Equal(t, "", FormatCommonConcerns(nil))
}
