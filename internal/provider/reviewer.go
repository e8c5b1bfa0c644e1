package provider

import "context"

// Reviewer is an external advisory capability: it accepts a prompt plus
// optional context and returns free-text feedback or fails.
// Implementations own their retry count and per-call timeout and return an
// error rather than a sentinel response on failure.
type Reviewer interface {
	// Name identifies the reviewer in outcomes, transcripts and logs.
	Name() string

	// Available reports whether the reviewer can be called at all
	// (binary installed, authenticated).
	Available(ctx context.Context) bool

	// Call sends the prompt. contextText may be empty.
	Call(ctx context.Context, prompt, contextText string) (*Response, error)
}

// Response is the text a reviewer produced for one call.
type Response struct {
	// Content is the reviewer's feedback.
	Content string `json:"content"`

	// Reviewer is the name of the reviewer that produced the content.
	Reviewer string `json:"reviewer"`

	// TokensUsed is reported when the backend exposes it.
	TokensUsed *int `json:"tokens_used,omitempty"`
}

// ComposePrompt prepends context to the prompt, separated by a rule.
func ComposePrompt(prompt, contextText string) string {
	if contextText == "" {
		return prompt
	}
	return contextText + "\n\n---\n\n" + prompt
}

// IsValidClaudeModel checks if a model alias is recognized.
func IsValidClaudeModel(model string) bool {
	for _, m := range ClaudeModels {
		if m == model {
			return true
		}
	}
	return false
}
