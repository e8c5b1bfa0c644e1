package debate

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxRounds matches any CapacityError via errors.Is
	ErrMaxRounds = errors.New("maximum debate rounds reached")

	// ErrReviewerCount indicates a debate was configured without exactly two reviewers
	ErrReviewerCount = errors.New("a debate needs exactly two reviewers")

	// ErrRoundOrder indicates a round was appended out of sequence
	ErrRoundOrder = errors.New("debate round out of order")

	// ErrCorrupt indicates a session file exists but cannot be used
	ErrCorrupt = errors.New("debate session file is corrupt")

	// ErrNoSession indicates no debate has been started
	ErrNoSession = errors.New("no debate in progress")
)

// CapacityError is returned when a session already has its maximum
// number of rounds. The session is left unchanged.
type CapacityError struct {
	Max int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("maximum rounds (%d) reached", e.Max)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrMaxRounds
}
