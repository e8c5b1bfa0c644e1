package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RevCBH/crosscritic/internal/provider"
)

// FileName is the project-level config file looked up in the project root.
const FileName = ".crosscritic.yaml"

// DeadlineMode selects how the batch timeout is applied.
type DeadlineMode string

const (
	// DeadlinePerTask waits up to the timeout for each reviewer in turn,
	// giving up on the rest once one times out.
	DeadlinePerTask DeadlineMode = "per_task"

	// DeadlineShared applies one deadline to the whole batch.
	DeadlineShared DeadlineMode = "shared"
)

// Config holds all configuration for crosscritic.
// It is immutable after creation via LoadConfig().
type Config struct {
	// StateDir holds session and checkpoint files.
	// Relative paths are resolved from the project root.
	StateDir string `yaml:"state_dir"`

	// LogLevel controls log verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log encoding (console, json)
	LogFormat string `yaml:"log_format"`

	// Providers overrides the CLI command per reviewer type
	Providers map[provider.ProviderType]ProviderSettings `yaml:"providers,omitempty"`

	// Review contains fan-out review settings
	Review ReviewConfig `yaml:"review"`

	// Debate contains debate settings
	Debate DebateConfig `yaml:"debate"`

	// Loop contains review loop checkpoint settings
	Loop LoopConfig `yaml:"loop"`

	// Metrics controls prometheus metric collection
	Metrics MetricsConfig `yaml:"metrics"`

	// Escalate controls notifications about reviews that need a human
	Escalate EscalateConfig `yaml:"escalate"`
}

// ProviderSettings holds configuration for a specific reviewer CLI.
type ProviderSettings struct {
	// Command is the CLI binary path or name
	Command string `yaml:"command"`
}

// ReviewConfig controls the fan-out caller and the reviewers it calls.
type ReviewConfig struct {
	// CallTimeout bounds a single reviewer CLI invocation
	CallTimeout string `yaml:"call_timeout"`

	// BatchTimeout bounds waiting for reviewers.
	// Empty means 1.5x CallTimeout.
	BatchTimeout string `yaml:"batch_timeout,omitempty"`

	// DeadlineMode is "per_task" (default) or "shared"
	DeadlineMode DeadlineMode `yaml:"deadline_mode"`

	// MaxRetries is how many attempts each reviewer makes per call
	MaxRetries int `yaml:"max_retries"`

	// RetryInterval is the minimum spacing between attempts
	RetryInterval string `yaml:"retry_interval"`

	// Reviewers is the ordered reviewer list; order is preserved in outcomes
	Reviewers []ReviewerConfig `yaml:"reviewers"`
}

// ReviewerConfig describes one reviewer in the batch.
type ReviewerConfig struct {
	// Name overrides the default reviewer name
	Name string `yaml:"name,omitempty"`

	// Type is claude, codex or opencode
	Type provider.ProviderType `yaml:"type"`

	// Model is the Claude model alias (claude only)
	Model string `yaml:"model,omitempty"`

	// Command overrides the CLI path for this reviewer only
	Command string `yaml:"command,omitempty"`
}

// DebateConfig controls debate sessions.
type DebateConfig struct {
	// MaxRounds caps the number of rounds in a session
	MaxRounds int `yaml:"max_rounds"`
}

// LoopConfig controls the review loop checkpoint.
type LoopConfig struct {
	// MaxIterations is the default cap for new checkpoints
	MaxIterations int `yaml:"max_iterations"`
}

// MetricsConfig controls metric collection.
type MetricsConfig struct {
	// Enabled turns on the prometheus collector
	Enabled bool `yaml:"enabled"`

	// Textfile, when set, is where metrics are written after each command
	// in node-exporter textfile format.
	Textfile string `yaml:"textfile,omitempty"`
}

// EscalateConfig controls review escalations.
type EscalateConfig struct {
	// Backends lists terminal, slack and/or webhook. Empty disables escalation.
	Backends []string `yaml:"backends,omitempty"`

	// MinSeverity is the least urgent severity sent (info, warning, critical)
	MinSeverity string `yaml:"min_severity"`

	// SlackWebhook is the Slack incoming webhook URL
	SlackWebhook string `yaml:"slack_webhook,omitempty"`

	// WebhookURL receives JSON escalations
	WebhookURL string `yaml:"webhook_url,omitempty"`
}

// CallTimeoutDuration parses the per-call timeout as a Duration.
func (c *Config) CallTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Review.CallTimeout)
}

// BatchTimeoutDuration returns the batch timeout, defaulting to 1.5x the
// call timeout when unset.
func (c *Config) BatchTimeoutDuration() (time.Duration, error) {
	if c.Review.BatchTimeout != "" {
		return time.ParseDuration(c.Review.BatchTimeout)
	}
	call, err := c.CallTimeoutDuration()
	if err != nil {
		return 0, err
	}
	return call * 3 / 2, nil
}

// RetryIntervalDuration parses the retry interval as a Duration.
func (c *Config) RetryIntervalDuration() (time.Duration, error) {
	return time.ParseDuration(c.Review.RetryInterval)
}

// LoadConfig loads configuration for the given project root.
// It applies defaults, then the user-level file, then the project file,
// then environment overrides, then validates.
//
// Parameters:
//   - projectRoot: absolute path to the project root directory
//
// Returns the validated Config or an error if validation fails.
func LoadConfig(projectRoot string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath, err := GlobalConfigPath(); err == nil {
		if err := mergeFile(cfg, globalPath); err != nil {
			return nil, err
		}
	}

	if err := mergeFile(cfg, filepath.Join(projectRoot, FileName)); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if !filepath.IsAbs(cfg.StateDir) {
		cfg.StateDir = filepath.Join(projectRoot, cfg.StateDir)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// mergeFile unmarshals path onto cfg. A missing file is not an error.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
