package review

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestConsensusScore(t *testing.T) {
	vocab := DefaultVocabulary()

	tests := []struct {
		name      string
		responses []string
		want      float64
	}{
		{name: "no responses", responses: nil, want: 0.0},
		{name: "single response", responses: []string{"anything at all"}, want: 1.0},
		{name: "single response without keywords", responses: []string{"ok"}, want: 1.0},
		{name: "both mention security only", responses: []string{"Security looks weak", "improve security"}, want: 1.0},
		{name: "only one mentions a keyword", responses: []string{"SQL injection risk", "looks fine"}, want: 0.0},
		{name: "no vocabulary keywords", responses: []string{"looks fine", "ship it"}, want: 0.0},
		{name: "two of three is a majority", responses: []string{"slow", "slow", "nothing"}, want: 1.0},
		{name: "one of three is not", responses: []string{"slow", "nothing", "nothing"}, want: 0.0},
		{name: "half of four is not", responses: []string{"slow", "slow", "a", "b"}, want: 0.0},
		{
			name:      "mixed",
			responses: []string{"security and memory", "security issue", "memory leak and bug"},
			want:      2.0 / 3.0,
		},
		{name: "translated terms are the same keyword", responses: []string{"보안 문제", "security problem"}, want: 1.0},
		{name: "case insensitive", responses: []string{"XSS", "xss"}, want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ConsensusScore(tt.responses, vocab), 1e-9)
		})
	}
}

func TestConsensusScore_Properties(t *testing.T) {
	vocab := DefaultVocabulary()
	words := []string{"security", "slow", "bug", "design", "naming", "fine", "ok", "memory", "ship"}

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "n")
		responses := make([]string, n)
		for i := range responses {
			k := rapid.IntRange(0, 4).Draw(rt, "words")
			text := ""
			for j := 0; j < k; j++ {
				text += " " + rapid.SampledFrom(words).Draw(rt, "word")
			}
			responses[i] = text
		}

		score := ConsensusScore(responses, vocab)
		if score < 0 || score > 1 {
			rt.Fatalf("score %v out of range", score)
		}
		if n == 1 && score != 1.0 {
			rt.Fatalf("single response scored %v", score)
		}
		if n >= 2 {
			// Identical responses agree on everything they mention.
			same := make([]string, n)
			for i := range same {
				same[i] = responses[0]
			}
			want := 0.0
			if len(vocab.Present(responses[0])) > 0 {
				want = 1.0
			}
			if got := ConsensusScore(same, vocab); got != want {
				rt.Fatalf("identical responses scored %v, want %v", got, want)
			}
		}
	})
}

func TestVocabulary_Filter(t *testing.T) {
	security := DefaultVocabulary().Filter(CategorySecurity)
	var names []string
	for _, k := range security {
		names = append(names, k.Name)
	}
	assert.Equal(t, []string{"security", "vulnerability", "injection", "xss", "csrf", "auth"}, names)
}

func TestVocabulary_MentionedBy(t *testing.T) {
	vocab := DefaultVocabulary()
	texts := []string{"bug and style", "a style bug", "performance"}
	assert.Equal(t, []string{"bug", "style"}, vocab.MentionedBy(texts, 2))
	assert.Equal(t, map[string]int{"bug": 2, "style": 2, "performance": 1}, vocab.Counts(texts))
}

func ExampleConsensusScore() {
	score := ConsensusScore([]string{"slow query", "slow page", "ok"}, DefaultVocabulary())
	fmt.Printf("%.2f\n", score)
	// Output: 1.00
}
