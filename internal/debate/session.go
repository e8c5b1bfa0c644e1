package debate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultMaxRounds caps a session when no other limit is configured.
const DefaultMaxRounds = 5

// Kind selects the subject type of a debate.
type Kind string

const (
	KindPlan Kind = "plan"
	KindCode Kind = "code"
)

// Entry is one reviewer's contribution to a round: a response or an error.
type Entry struct {
	Reviewer string
	Response *string
	Error    *string
}

// Text returns the response, or the error placeholder used in transcripts.
func (e Entry) Text() string {
	if e.Response != nil {
		return *e.Response
	}
	msg := "unknown error"
	if e.Error != nil {
		msg = *e.Error
	}
	return fmt.Sprintf("*Error: %s*", msg)
}

// Succeeded reports whether the reviewer responded.
func (e Entry) Succeeded() bool {
	return e.Response != nil
}

// Round is one debate round. Entries follow the session's reviewer order.
type Round struct {
	Number  int
	Entries []Entry
}

// Session is an append-only sequence of rounds between two reviewers.
type Session struct {
	ID          string
	Kind        Kind
	SubjectPath string
	Reviewers   []string
	MaxRounds   int
	Rounds      []Round
}

// NewSession creates an empty session.
func NewSession(kind Kind, subjectPath string, reviewers []string, maxRounds int) *Session {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Session{
		ID:          uuid.NewString(),
		Kind:        kind,
		SubjectPath: subjectPath,
		Reviewers:   append([]string(nil), reviewers...),
		MaxRounds:   maxRounds,
	}
}

// RoundCount returns the number of rounds so far.
func (s *Session) RoundCount() int {
	return len(s.Rounds)
}

// LatestRound returns the most recent round, or nil before round 1.
func (s *Session) LatestRound() *Round {
	if len(s.Rounds) == 0 {
		return nil
	}
	return &s.Rounds[len(s.Rounds)-1]
}

// Full reports whether no further round may be added.
func (s *Session) Full() bool {
	return len(s.Rounds) >= s.MaxRounds
}

// Append adds the next round. It fails with a CapacityError when the
// session is full and with ErrRoundOrder when r is not the next number.
func (s *Session) Append(r Round) error {
	if s.Full() {
		return &CapacityError{Max: s.MaxRounds}
	}
	if want := len(s.Rounds) + 1; r.Number != want {
		return fmt.Errorf("%w: got round %d, want %d", ErrRoundOrder, r.Number, want)
	}
	s.Rounds = append(s.Rounds, r)
	return nil
}

// Transcript renders every round in order. Each round is a "## Round N"
// header followed by a "### <reviewer>" section per entry and a blank
// line.
func (s *Session) Transcript() string {
	var lines []string
	for _, r := range s.Rounds {
		lines = append(lines, fmt.Sprintf("## Round %d", r.Number))
		for _, e := range r.Entries {
			lines = append(lines, "### "+e.Reviewer)
			lines = append(lines, e.Text())
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
