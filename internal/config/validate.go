package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/RevCBH/crosscritic/internal/provider"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// Validate checks all config values for validity.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig checks all config values for validity.
// Returns nil if valid, or joined errors for all validation failures.
func validateConfig(cfg *Config) error {
	var errs []error

	callTimeout, err := time.ParseDuration(cfg.Review.CallTimeout)
	if err != nil {
		errs = append(errs, &ValidationError{
			Field:   "review.call_timeout",
			Value:   cfg.Review.CallTimeout,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	} else if callTimeout <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "review.call_timeout",
			Value:   cfg.Review.CallTimeout,
			Message: "must be positive",
		})
	}

	if cfg.Review.BatchTimeout != "" {
		d, err := time.ParseDuration(cfg.Review.BatchTimeout)
		if err != nil {
			errs = append(errs, &ValidationError{
				Field:   "review.batch_timeout",
				Value:   cfg.Review.BatchTimeout,
				Message: fmt.Sprintf("invalid duration: %v", err),
			})
		} else if d <= 0 {
			errs = append(errs, &ValidationError{
				Field:   "review.batch_timeout",
				Value:   cfg.Review.BatchTimeout,
				Message: "must be positive",
			})
		}
	}

	if _, err := time.ParseDuration(cfg.Review.RetryInterval); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "review.retry_interval",
			Value:   cfg.Review.RetryInterval,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}

	switch cfg.Review.DeadlineMode {
	case DeadlinePerTask, DeadlineShared:
	default:
		errs = append(errs, &ValidationError{
			Field:   "review.deadline_mode",
			Value:   cfg.Review.DeadlineMode,
			Message: "must be one of: per_task, shared",
		})
	}

	if cfg.Review.MaxRetries < 1 {
		errs = append(errs, &ValidationError{
			Field:   "review.max_retries",
			Value:   cfg.Review.MaxRetries,
			Message: "must be at least 1",
		})
	}

	if len(cfg.Review.Reviewers) == 0 {
		errs = append(errs, &ValidationError{
			Field:   "review.reviewers",
			Value:   len(cfg.Review.Reviewers),
			Message: "must list at least one reviewer",
		})
	}
	for i, r := range cfg.Review.Reviewers {
		if err := ValidateProviderType(string(r.Type)); err != nil {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("review.reviewers[%d].type", i),
				Value:   r.Type,
				Message: err.Error(),
			})
			continue
		}
		if r.Type == provider.ProviderClaude && r.Model != "" && !provider.IsValidClaudeModel(r.Model) {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("review.reviewers[%d].model", i),
				Value:   r.Model,
				Message: fmt.Sprintf("must be one of: %v", provider.ClaudeModels),
			})
		}
	}

	if cfg.Debate.MaxRounds < 1 {
		errs = append(errs, &ValidationError{
			Field:   "debate.max_rounds",
			Value:   cfg.Debate.MaxRounds,
			Message: "must be at least 1",
		})
	}

	if cfg.Loop.MaxIterations < 1 {
		errs = append(errs, &ValidationError{
			Field:   "loop.max_iterations",
			Value:   cfg.Loop.MaxIterations,
			Message: "must be at least 1",
		})
	}

	switch cfg.Escalate.MinSeverity {
	case "info", "warning", "critical":
	default:
		errs = append(errs, &ValidationError{
			Field:   "escalate.min_severity",
			Value:   cfg.Escalate.MinSeverity,
			Message: "must be one of: info, warning, critical",
		})
	}
	for i, b := range cfg.Escalate.Backends {
		switch b {
		case "terminal":
		case "slack":
			if cfg.Escalate.SlackWebhook == "" {
				errs = append(errs, &ValidationError{
					Field:   "escalate.slack_webhook",
					Value:   "",
					Message: "required by the slack backend",
				})
			}
		case "webhook":
			if cfg.Escalate.WebhookURL == "" {
				errs = append(errs, &ValidationError{
					Field:   "escalate.webhook_url",
					Value:   "",
					Message: "required by the webhook backend",
				})
			}
		default:
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("escalate.backends[%d]", i),
				Value:   b,
				Message: "must be one of: terminal, slack, webhook",
			})
		}
	}

	if cfg.StateDir == "" {
		errs = append(errs, &ValidationError{
			Field:   "state_dir",
			Value:   cfg.StateDir,
			Message: "must not be empty",
		})
	}

	// LogLevel must be one of: debug, info, warn, error (case-sensitive)
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, &ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: "must be one of: debug, info, warn, error",
		})
	}

	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		errs = append(errs, &ValidationError{
			Field:   "log_format",
			Value:   cfg.LogFormat,
			Message: "must be one of: console, json",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ValidateProviderType checks if a reviewer type string is supported.
func ValidateProviderType(t string) error {
	switch provider.ProviderType(t) {
	case provider.ProviderClaude, provider.ProviderCodex, provider.ProviderOpenCode:
		return nil
	default:
		return fmt.Errorf("unknown provider type %q (must be claude, codex or opencode)", t)
	}
}
