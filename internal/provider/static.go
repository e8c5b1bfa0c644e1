package provider

import (
	"context"
	"time"
)

// Static is an in-process Reviewer that returns a fixed response or error
// after an optional delay. Used by tests and dry runs.
type Static struct {
	ReviewerName string
	Content      string
	Err          error
	Delay        time.Duration
	Unavailable  bool
}

func (s *Static) Name() string { return s.ReviewerName }

func (s *Static) Available(context.Context) bool { return !s.Unavailable }

// Call waits for Delay (or ctx), then returns Content or Err.
func (s *Static) Call(ctx context.Context, _, _ string) (*Response, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return &Response{Content: s.Content, Reviewer: s.ReviewerName}, nil
}

// Func adapts a function to the Reviewer interface.
type Func struct {
	ReviewerName string
	Fn           func(ctx context.Context, prompt, contextText string) (string, error)
}

func (f *Func) Name() string { return f.ReviewerName }

func (f *Func) Available(context.Context) bool { return true }

func (f *Func) Call(ctx context.Context, prompt, contextText string) (*Response, error) {
	content, err := f.Fn(ctx, prompt, contextText)
	if err != nil {
		return nil, err
	}
	return &Response{Content: content, Reviewer: f.ReviewerName}, nil
}

var (
	_ Reviewer = (*Static)(nil)
	_ Reviewer = (*Func)(nil)
)
