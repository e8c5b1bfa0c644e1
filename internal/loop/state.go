// Package loop keeps the durable checkpoint of an iterative
// review-and-revise workflow: which iteration and phase it is in, the
// conflicts seen last, and a log of what happened along the way.
package loop

// Defaults applied to new checkpoints and to fields missing on load.
const (
	DefaultIteration     = 1
	DefaultMaxIterations = 5
	DefaultPhase         = "plan_review"
)

// State is the persisted checkpoint. Bounds between Iteration and
// MaxIterations are not enforced here.
type State struct {
	Iteration     int            `json:"iteration"`
	MaxIterations int            `json:"max_iterations"`
	Phase         string         `json:"phase"`
	LastConflicts []string       `json:"last_conflicts"`
	Resolved      bool           `json:"resolved"`
	History       []HistoryEntry `json:"history"`
}

// HistoryEntry is one logged event, tagged with the iteration and phase
// current when it was recorded.
type HistoryEntry struct {
	Iteration int            `json:"iteration"`
	Phase     string         `json:"phase"`
	Event     string         `json:"event"`
	Details   map[string]any `json:"details"`
}

// NewState returns a checkpoint with default values.
func NewState() *State {
	return &State{
		Iteration:     DefaultIteration,
		MaxIterations: DefaultMaxIterations,
		Phase:         DefaultPhase,
		LastConflicts: []string{},
		History:       []HistoryEntry{},
	}
}

// Exhausted reports whether the current iteration is the last allowed one.
func (s *State) Exhausted() bool {
	return s.Iteration >= s.MaxIterations
}

// normalize replaces null lists with empty ones so the file never
// carries nulls.
func (s *State) normalize() {
	if s.LastConflicts == nil {
		s.LastConflicts = []string{}
	}
	if s.History == nil {
		s.History = []HistoryEntry{}
	}
	for i := range s.History {
		if s.History[i].Details == nil {
			s.History[i].Details = map[string]any{}
		}
	}
}
