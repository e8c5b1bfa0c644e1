package config

import (
	"path/filepath"
)

// State file names under the state directory.
const (
	DebateStateFile     = "debate_state.json"
	CodeReviewStateFile = "code_review_state.json"
	LoopStateFile       = "loop_state.json"
)

// ProjectRoot returns the project root for a subject file: its directory,
// or that directory's parent when the file already lives inside the state
// directory.
func ProjectRoot(subjectPath string) (string, error) {
	abs, err := filepath.Abs(subjectPath)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(abs)
	if filepath.Base(dir) == DefaultStateDir {
		return filepath.Dir(dir), nil
	}
	return dir, nil
}

// StatePath returns the path of a named state file under the configured
// state directory.
func (c *Config) StatePath(name string) string {
	return filepath.Join(c.StateDir, name)
}
