package config

import (
	"os"
	"path/filepath"
)

// GlobalConfigPath returns the user-level config file (~/.crosscritic/config.yaml).
// It is layered under the project file so per-user CLI paths need not be
// repeated in every project.
func GlobalConfigPath() (string, error) {
	if dir := os.Getenv("CROSSCRITIC_HOME"); dir != "" {
		return filepath.Join(dir, "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".crosscritic", "config.yaml"), nil
}
