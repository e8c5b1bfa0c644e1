package provider

import "go.uber.org/zap"

// NewCodex creates a reviewer backed by the Codex CLI.
// Codex writes its final message to the file named by -o; stdout carries
// progress noise and is ignored.
func NewCodex(cfg Config, logger *zap.Logger) *CLIReviewer {
	command := cfg.Command
	if command == "" {
		command = "codex"
	}
	name := cfg.Name
	if name == "" {
		name = "codex-gpt"
	}

	spec := commandSpec{
		kind: "codex",
		args: func(prompt, outputFile string) []string {
			return []string{"exec", prompt, "-o", outputFile}
		},
		readsOutputFile: true,
	}
	return newCLIReviewer(name, command, spec, cfg, logger)
}
