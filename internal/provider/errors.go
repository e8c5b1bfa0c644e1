package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates a single CLI invocation exceeded its timeout
	ErrTimeout = errors.New("timed out")

	// ErrEmptyOutput indicates the CLI exited cleanly but produced no text
	ErrEmptyOutput = errors.New("empty response")

	// ErrUnavailable indicates the reviewer CLI is not installed or not usable
	ErrUnavailable = errors.New("reviewer unavailable")

	// ErrUnknownModel indicates an unsupported Claude model alias
	ErrUnknownModel = errors.New("unknown model")
)

// CallError is returned when every attempt of a reviewer call failed.
// Its message is the last attempt's failure; the reviewer name is kept
// separately so callers can prefix it once.
type CallError struct {
	Reviewer string
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// ExecutionError wraps a non-zero CLI exit
type ExecutionError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExecutionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed (exit %d): %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed (exit %d)", e.Command, e.ExitCode)
}
