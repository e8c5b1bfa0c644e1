package provider

import "time"

// ProviderType identifies which CLI backs a reviewer
type ProviderType string

const (
	// ProviderClaude uses the Claude CLI in a fresh, independent session
	ProviderClaude ProviderType = "claude"

	// ProviderCodex uses the OpenAI Codex CLI
	ProviderCodex ProviderType = "codex"

	// ProviderOpenCode uses the OpenCode CLI
	ProviderOpenCode ProviderType = "opencode"
)

// Default per-reviewer call settings.
const (
	DefaultTimeout       = 300 * time.Second
	DefaultMaxRetries    = 3
	DefaultRetryInterval = 2 * time.Second
	DefaultClaudeModel   = "sonnet"
)

// ClaudeModels lists the model aliases accepted by the Claude reviewer.
var ClaudeModels = []string{"sonnet", "opus", "haiku"}

// Config holds reviewer configuration
type Config struct {
	// Type specifies which CLI to use (defaults to "claude" if empty)
	Type ProviderType

	// Command is the path to the CLI executable.
	// If empty, uses the default command name ("claude", "codex" or "opencode").
	Command string

	// Model selects the Claude model alias. Ignored by other providers.
	Model string

	// Name overrides the reviewer name used in outcomes and transcripts.
	Name string

	// Timeout bounds a single CLI invocation.
	Timeout time.Duration

	// MaxRetries is the number of attempts before the call fails.
	MaxRetries int

	// RetryInterval is the minimum spacing between attempts.
	RetryInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryInterval < 0 {
		c.RetryInterval = 0
	}
	return c
}
