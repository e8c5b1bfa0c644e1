package config

import (
	"fmt"

	"github.com/RevCBH/crosscritic/internal/provider"
)

// GetProviderCommand returns the CLI command for a reviewer type,
// falling back to the type name itself.
func GetProviderCommand(cfg *Config, t provider.ProviderType) string {
	if settings, ok := cfg.Providers[t]; ok && settings.Command != "" {
		return settings.Command
	}
	return string(t)
}

// ReviewerProviders resolves the configured reviewers into provider configs,
// in order, with timeouts and retry settings applied.
func (c *Config) ReviewerProviders() ([]provider.Config, error) {
	callTimeout, err := c.CallTimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("review.call_timeout: %w", err)
	}
	retryInterval, err := c.RetryIntervalDuration()
	if err != nil {
		return nil, fmt.Errorf("review.retry_interval: %w", err)
	}

	out := make([]provider.Config, 0, len(c.Review.Reviewers))
	for _, r := range c.Review.Reviewers {
		command := r.Command
		if command == "" {
			command = GetProviderCommand(c, r.Type)
		}
		out = append(out, provider.Config{
			Type:          r.Type,
			Command:       command,
			Model:         r.Model,
			Name:          r.Name,
			Timeout:       callTimeout,
			MaxRetries:    c.Review.MaxRetries,
			RetryInterval: retryInterval,
		})
	}
	return out, nil
}
