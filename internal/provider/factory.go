package provider

import (
	"fmt"

	"go.uber.org/zap"
)

// FromConfig creates a Reviewer from the given configuration.
// If cfg.Type is empty, defaults to Claude.
// Returns an error for unknown provider types or Claude models.
func FromConfig(cfg Config, logger *zap.Logger) (Reviewer, error) {
	switch cfg.Type {
	case ProviderClaude, "":
		return NewClaude(cfg, logger)
	case ProviderCodex:
		return NewCodex(cfg, logger), nil
	case ProviderOpenCode:
		return NewOpenCode(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// FromConfigs builds one reviewer per configuration, in order.
func FromConfigs(cfgs []Config, logger *zap.Logger) ([]Reviewer, error) {
	reviewers := make([]Reviewer, 0, len(cfgs))
	for i, cfg := range cfgs {
		r, err := FromConfig(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("reviewer %d: %w", i, err)
		}
		reviewers = append(reviewers, r)
	}
	return reviewers, nil
}
