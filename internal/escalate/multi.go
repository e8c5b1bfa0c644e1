package escalate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Multi fans an escalation out to several backends
type Multi struct {
	escalators []Escalator
}

// NewMulti creates a Multi escalator over escalators
func NewMulti(escalators ...Escalator) *Multi {
	return &Multi{escalators: escalators}
}

// Escalate sends to every backend concurrently. One failing backend does
// not stop the others; all failures are joined.
func (m *Multi) Escalate(ctx context.Context, e Escalation) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, esc := range m.escalators {
		g.Go(func() error {
			if err := esc.Escalate(ctx, e); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", esc.Name(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Name returns "multi"
func (m *Multi) Name() string {
	return "multi"
}

// Config selects escalation backends
type Config struct {
	Backends     []string
	SlackWebhook string
	WebhookURL   string
}

// FromConfig builds the configured escalator. Terminal output goes to w.
// It returns nil when no backend is configured.
func FromConfig(cfg Config, w io.Writer) (Escalator, error) {
	var escalators []Escalator
	for _, backend := range cfg.Backends {
		switch backend {
		case "terminal":
			escalators = append(escalators, NewTerminal(w))
		case "slack":
			if cfg.SlackWebhook == "" {
				return nil, fmt.Errorf("slack backend requires slack_webhook")
			}
			escalators = append(escalators, NewSlack(cfg.SlackWebhook, nil))
		case "webhook":
			if cfg.WebhookURL == "" {
				return nil, fmt.Errorf("webhook backend requires webhook_url")
			}
			escalators = append(escalators, NewWebhook(cfg.WebhookURL, nil))
		default:
			return nil, fmt.Errorf("unknown escalation backend: %s", backend)
		}
	}

	switch len(escalators) {
	case 0:
		return nil, nil
	case 1:
		return escalators[0], nil
	default:
		return NewMulti(escalators...), nil
	}
}
