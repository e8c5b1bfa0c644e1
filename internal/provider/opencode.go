package provider

import "go.uber.org/zap"

// NewOpenCode creates a reviewer backed by the OpenCode CLI.
// Availability is confirmed with a short probe call since the binary can be
// installed without a configured model.
func NewOpenCode(cfg Config, logger *zap.Logger) *CLIReviewer {
	command := cfg.Command
	if command == "" {
		command = "opencode"
	}
	name := cfg.Name
	if name == "" {
		name = "opencode-gpt"
	}

	spec := commandSpec{
		kind: "opencode",
		args: func(prompt, _ string) []string {
			return []string{"-p", prompt, "-q"}
		},
		probeArgs: []string{"-p", "hello", "-q"},
	}
	return newCLIReviewer(name, command, spec, cfg, logger)
}
