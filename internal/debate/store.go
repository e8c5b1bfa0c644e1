package debate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Store persists one session as a JSON file.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore creates a store for the file at path.
func NewStore(path string) *Store {
	return &Store{path: path, logger: zap.NewNop()}
}

// WithLogger sets the logger used to report discarded session files.
func (s *Store) WithLogger(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger.With(zap.String("component", "debate"), zap.String("path", s.path))
	return s
}

// Path returns the session file path.
func (s *Store) Path() string {
	return s.path
}

type fileRound struct {
	RoundNumber       int     `json:"round_number"`
	ReviewerAResponse *string `json:"reviewer_a_response"`
	ReviewerBResponse *string `json:"reviewer_b_response"`
	ReviewerAError    *string `json:"reviewer_a_error"`
	ReviewerBError    *string `json:"reviewer_b_error"`
}

type fileSession struct {
	ID          string      `json:"id"`
	ReviewType  Kind        `json:"review_type"`
	SubjectPath string      `json:"subject_path"`
	ReviewerA   string      `json:"reviewer_a"`
	ReviewerB   string      `json:"reviewer_b"`
	MaxRounds   int         `json:"max_rounds"`
	Rounds      []fileRound `json:"rounds"`
}

// Load reads the session. A missing file yields an error matching
// fs.ErrNotExist; unreadable content yields ErrCorrupt.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var f fileSession
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return f.toSession(s.path)
}

// LoadOrNil returns the saved session, or nil when there is none or the
// file cannot be read. A corrupt file is logged and otherwise treated as
// absent.
func (s *Store) LoadOrNil() *Session {
	session, err := s.Load()
	switch {
	case err == nil:
		return session
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("no debate session")
	default:
		s.logger.Warn("ignoring unreadable debate session", zap.Error(err))
	}
	return nil
}

// Exists reports whether a session file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save writes the session atomically, creating parent directories.
func (s *Store) Save(session *Session) error {
	if len(session.Reviewers) != 2 {
		return ErrReviewerCount
	}

	data, err := json.MarshalIndent(fromSession(session), "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".debate-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Reset deletes the session file. It reports whether a file was removed;
// a missing file is not an error.
func (s *Store) Reset() (bool, error) {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func fromSession(s *Session) fileSession {
	f := fileSession{
		ID:          s.ID,
		ReviewType:  s.Kind,
		SubjectPath: s.SubjectPath,
		ReviewerA:   s.Reviewers[0],
		ReviewerB:   s.Reviewers[1],
		MaxRounds:   s.MaxRounds,
		Rounds:      make([]fileRound, 0, len(s.Rounds)),
	}
	for _, r := range s.Rounds {
		fr := fileRound{RoundNumber: r.Number}
		if len(r.Entries) > 0 {
			fr.ReviewerAResponse, fr.ReviewerAError = r.Entries[0].Response, r.Entries[0].Error
		}
		if len(r.Entries) > 1 {
			fr.ReviewerBResponse, fr.ReviewerBError = r.Entries[1].Response, r.Entries[1].Error
		}
		f.Rounds = append(f.Rounds, fr)
	}
	return f
}

func (f fileSession) toSession(path string) (*Session, error) {
	if f.ReviewType != KindPlan && f.ReviewType != KindCode {
		return nil, fmt.Errorf("%w: %s: unknown review type %q", ErrCorrupt, path, f.ReviewType)
	}
	if f.ReviewerA == "" {
		f.ReviewerA = "reviewer_a"
	}
	if f.ReviewerB == "" {
		f.ReviewerB = "reviewer_b"
	}
	if f.MaxRounds <= 0 {
		f.MaxRounds = DefaultMaxRounds
	}

	s := &Session{
		ID:          f.ID,
		Kind:        f.ReviewType,
		SubjectPath: f.SubjectPath,
		Reviewers:   []string{f.ReviewerA, f.ReviewerB},
		MaxRounds:   f.MaxRounds,
	}
	for _, fr := range f.Rounds {
		r := Round{
			Number: fr.RoundNumber,
			Entries: []Entry{
				{Reviewer: f.ReviewerA, Response: fr.ReviewerAResponse, Error: fr.ReviewerAError},
				{Reviewer: f.ReviewerB, Response: fr.ReviewerBResponse, Error: fr.ReviewerBError},
			},
		}
		if err := s.Append(r); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
		}
	}
	return s, nil
}
