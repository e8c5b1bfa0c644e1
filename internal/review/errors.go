package review

import "errors"

// ErrNoReviewers is returned when a batch is requested with no reviewers.
// No reviewer is called.
var ErrNoReviewers = errors.New("at least one reviewer is required")
