package config

import (
	"os"

	"github.com/RevCBH/crosscritic/internal/provider"
)

// envOverrides maps environment variables to config field setters.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "CROSSCRITIC_LOG_LEVEL",
		apply: func(c *Config, v string) {
			c.LogLevel = v
		},
	},
	{
		envVar: "CROSSCRITIC_LOG_FORMAT",
		apply: func(c *Config, v string) {
			c.LogFormat = v
		},
	},
	{
		envVar: "CROSSCRITIC_CALL_TIMEOUT",
		apply: func(c *Config, v string) {
			c.Review.CallTimeout = v
		},
	},
	{
		envVar: "CROSSCRITIC_BATCH_TIMEOUT",
		apply: func(c *Config, v string) {
			c.Review.BatchTimeout = v
		},
	},
	{
		envVar: "CROSSCRITIC_DEADLINE_MODE",
		apply: func(c *Config, v string) {
			c.Review.DeadlineMode = DeadlineMode(v)
		},
	},
	{
		envVar: "CROSSCRITIC_STATE_DIR",
		apply: func(c *Config, v string) {
			c.StateDir = v
		},
	},
	{
		envVar: "CROSSCRITIC_SLACK_WEBHOOK",
		apply: func(c *Config, v string) {
			c.Escalate.SlackWebhook = v
		},
	},
	{
		envVar: "CROSSCRITIC_CLAUDE_CMD",
		apply: func(c *Config, v string) {
			c.setCommand(provider.ProviderClaude, v)
		},
	},
	{
		envVar: "CROSSCRITIC_CODEX_CMD",
		apply: func(c *Config, v string) {
			c.setCommand(provider.ProviderCodex, v)
		},
	},
	{
		envVar: "CROSSCRITIC_OPENCODE_CMD",
		apply: func(c *Config, v string) {
			c.setCommand(provider.ProviderOpenCode, v)
		},
	},
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}

func (c *Config) setCommand(t provider.ProviderType, command string) {
	if c.Providers == nil {
		c.Providers = make(map[provider.ProviderType]ProviderSettings)
	}
	c.Providers[t] = ProviderSettings{Command: command}
}
