package loop

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrCorrupt indicates the checkpoint file exists but cannot be decoded.
var ErrCorrupt = errors.New("loop state file is corrupt")

// Manager loads and stores the checkpoint file.
type Manager struct {
	path   string
	logger *zap.Logger
}

// NewManager creates a manager for the checkpoint at path.
func NewManager(path string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		path:   path,
		logger: logger.With(zap.String("component", "loop"), zap.String("path", path)),
	}
}

// Path returns the checkpoint file path.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the checkpoint. A missing file yields an error matching
// fs.ErrNotExist and undecodable content yields ErrCorrupt. Missing fields
// take their defaults.
func (m *Manager) Load() (*State, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, m.path, err)
	}
	state.normalize()
	return state, nil
}

// LoadOrCreate returns the saved checkpoint, or defaults when there is
// none or it cannot be read.
func (m *Manager) LoadOrCreate() *State {
	state, err := m.Load()
	switch {
	case err == nil:
		return state
	case errors.Is(err, fs.ErrNotExist):
		m.logger.Debug("no loop state, starting fresh")
	default:
		m.logger.Warn("ignoring unreadable loop state", zap.Error(err))
	}
	return NewState()
}

// Save replaces the checkpoint file atomically, creating its directory.
func (m *Manager) Save(state *State) error {
	state.normalize()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode loop state: %w", err)
	}
	if err := writeFileAtomic(m.path, data); err != nil {
		return fmt.Errorf("write loop state: %w", err)
	}
	m.logger.Debug("saved loop state",
		zap.Int("iteration", state.Iteration),
		zap.String("phase", state.Phase),
	)
	return nil
}

// Reset deletes the checkpoint file. A missing file is not an error.
func (m *Manager) Reset() (bool, error) {
	err := os.Remove(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AppendEvent records event in state's history under the current
// iteration and phase. It does not save. Details are kept in the form
// Load returns them (numbers as float64, slices as []any), so a saved
// and reloaded state compares equal to the one in memory.
func (m *Manager) AppendEvent(state *State, event string, details map[string]any) {
	details, err := decodedDetails(details)
	if err != nil {
		m.logger.Warn("loop event details are not JSON encodable", zap.String("event", event), zap.Error(err))
	}
	state.History = append(state.History, HistoryEntry{
		Iteration: state.Iteration,
		Phase:     state.Phase,
		Event:     event,
		Details:   details,
	})
}

func decodedDetails(details map[string]any) (map[string]any, error) {
	if len(details) == 0 {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return details, err
	}
	decoded := map[string]any{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return details, err
	}
	return decoded, nil
}

// writeFileAtomic replaces path with data through a temp file in the same
// directory, so an interrupted write leaves the previous file intact.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".loop-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
