package provider

import (
	"fmt"

	"go.uber.org/zap"
)

// NewClaude creates a reviewer backed by the Claude CLI.
// Each call runs in a fresh print-mode session, so it has no access to the
// caller's conversation. The model must be one of ClaudeModels.
func NewClaude(cfg Config, logger *zap.Logger) (*CLIReviewer, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultClaudeModel
	}
	if !IsValidClaudeModel(model) {
		return nil, fmt.Errorf("%w %q (expected one of %v)", ErrUnknownModel, model, ClaudeModels)
	}

	command := cfg.Command
	if command == "" {
		command = "claude"
	}
	name := cfg.Name
	if name == "" {
		name = "claude-" + model
	}

	spec := commandSpec{
		kind: "claude",
		args: func(prompt, _ string) []string {
			return []string{"-p", prompt, "--model", model, "--output-format", "text"}
		},
	}
	return newCLIReviewer(name, command, spec, cfg, logger), nil
}
