package review

import "strings"

// Category groups vocabulary keywords by concern.
type Category string

const (
	CategorySecurity     Category = "security"
	CategoryPerformance  Category = "performance"
	CategoryQuality      Category = "quality"
	CategoryArchitecture Category = "architecture"
	CategoryStyle        Category = "style"
)

// Keyword is one concept in the vocabulary. Terms are equivalent spellings
// (including translations); any of them marks the keyword as present.
type Keyword struct {
	Name     string
	Category Category
	Terms    []string
}

// In reports whether any term occurs in text, ignoring case.
func (k Keyword) In(text string) bool {
	return k.inLower(strings.ToLower(text))
}

func (k Keyword) inLower(lower string) bool {
	for _, term := range k.Terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Vocabulary is an ordered keyword list. Order determines the order of
// keywords in rendered output and the scan order for conflicts.
type Vocabulary []Keyword

// DefaultVocabulary returns the built-in review vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		{Name: "security", Category: CategorySecurity, Terms: []string{"security", "보안"}},
		{Name: "vulnerability", Category: CategorySecurity, Terms: []string{"vulnerability", "취약점"}},
		{Name: "injection", Category: CategorySecurity, Terms: []string{"injection"}},
		{Name: "xss", Category: CategorySecurity, Terms: []string{"xss"}},
		{Name: "csrf", Category: CategorySecurity, Terms: []string{"csrf"}},
		{Name: "auth", Category: CategorySecurity, Terms: []string{"auth", "인증"}},

		{Name: "performance", Category: CategoryPerformance, Terms: []string{"performance", "성능"}},
		{Name: "slow", Category: CategoryPerformance, Terms: []string{"slow"}},
		{Name: "memory", Category: CategoryPerformance, Terms: []string{"memory", "메모리"}},
		{Name: "cpu", Category: CategoryPerformance, Terms: []string{"cpu"}},
		{Name: "optimization", Category: CategoryPerformance, Terms: []string{"optimization", "최적화"}},

		{Name: "error", Category: CategoryQuality, Terms: []string{"error", "에러", "오류"}},
		{Name: "exception", Category: CategoryQuality, Terms: []string{"exception"}},
		{Name: "bug", Category: CategoryQuality, Terms: []string{"bug", "버그"}},
		{Name: "fix", Category: CategoryQuality, Terms: []string{"fix"}},

		{Name: "architecture", Category: CategoryArchitecture, Terms: []string{"architecture", "아키텍처"}},
		{Name: "design", Category: CategoryArchitecture, Terms: []string{"design", "설계"}},
		{Name: "pattern", Category: CategoryArchitecture, Terms: []string{"pattern", "패턴"}},
		{Name: "structure", Category: CategoryArchitecture, Terms: []string{"structure", "구조"}},

		{Name: "naming", Category: CategoryStyle, Terms: []string{"naming", "네이밍"}},
		{Name: "convention", Category: CategoryStyle, Terms: []string{"convention", "컨벤션"}},
		{Name: "format", Category: CategoryStyle, Terms: []string{"format"}},
		{Name: "style", Category: CategoryStyle, Terms: []string{"style", "스타일"}},
		{Name: "readable", Category: CategoryStyle, Terms: []string{"readable", "가독성"}},
	}
}

// Filter returns the keywords in the given categories, keeping order.
func (v Vocabulary) Filter(categories ...Category) Vocabulary {
	want := make(map[Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	var out Vocabulary
	for _, k := range v {
		if want[k.Category] {
			out = append(out, k)
		}
	}
	return out
}

// Present returns the names of keywords found in text, in vocabulary order.
func (v Vocabulary) Present(text string) []string {
	lower := strings.ToLower(text)
	var names []string
	for _, k := range v {
		if k.inLower(lower) {
			names = append(names, k.Name)
		}
	}
	return names
}

// Counts returns, per keyword, how many texts mention it. Each text counts
// at most once per keyword. Keywords no text mentions are omitted.
func (v Vocabulary) Counts(texts []string) map[string]int {
	counts := make(map[string]int)
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, k := range v {
			if k.inLower(lower) {
				counts[k.Name]++
			}
		}
	}
	return counts
}

// MentionedBy returns keywords mentioned by at least atLeast texts, in
// vocabulary order.
func (v Vocabulary) MentionedBy(texts []string, atLeast int) []string {
	counts := v.Counts(texts)
	var names []string
	for _, k := range v {
		if counts[k.Name] >= atLeast {
			names = append(names, k.Name)
		}
	}
	return names
}
