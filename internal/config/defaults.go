package config

import "github.com/RevCBH/crosscritic/internal/provider"

const (
	DefaultStateDir        = ".cross-critic"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultCallTimeout     = "300s"
	DefaultMaxRetries      = provider.DefaultMaxRetries
	DefaultRetryInterval   = "2s"
	DefaultMaxRounds       = 5
	DefaultMaxIterations   = 5
	DefaultClaudeCommand   = "claude"
	DefaultCodexCommand    = "codex"
	DefaultOpenCodeCommand = "opencode"
	DefaultMinSeverity     = "warning"
)

// DefaultReviewers returns the default reviewer pair: Codex and Claude Sonnet.
func DefaultReviewers() []ReviewerConfig {
	return []ReviewerConfig{
		{Type: provider.ProviderCodex},
		{Type: provider.ProviderClaude, Model: provider.DefaultClaudeModel},
	}
}

// DefaultProviders returns the default command for each reviewer CLI.
func DefaultProviders() map[provider.ProviderType]ProviderSettings {
	return map[provider.ProviderType]ProviderSettings{
		provider.ProviderClaude:   {Command: DefaultClaudeCommand},
		provider.ProviderCodex:    {Command: DefaultCodexCommand},
		provider.ProviderOpenCode: {Command: DefaultOpenCodeCommand},
	}
}

// DefaultConfig returns a Config with all default values applied.
func DefaultConfig() *Config {
	return &Config{
		StateDir:  DefaultStateDir,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Providers: DefaultProviders(),
		Review: ReviewConfig{
			CallTimeout:   DefaultCallTimeout,
			DeadlineMode:  DeadlinePerTask,
			MaxRetries:    DefaultMaxRetries,
			RetryInterval: DefaultRetryInterval,
			Reviewers:     DefaultReviewers(),
		},
		Debate:   DebateConfig{MaxRounds: DefaultMaxRounds},
		Loop:     LoopConfig{MaxIterations: DefaultMaxIterations},
		Escalate: EscalateConfig{MinSeverity: DefaultMinSeverity},
	}
}
