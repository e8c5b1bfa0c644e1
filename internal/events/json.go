package events

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is one line of --json-events output.
type Record struct {
	Seq       uint64         `json:"seq"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Batch     string         `json:"batch,omitempty"`
	Reviewer  string         `json:"reviewer,omitempty"`
	Round     *int           `json:"round,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// JSONEmitter writes events to w as newline-delimited Records, numbering
// them in emission order. Safe for concurrent use.
type JSONEmitter struct {
	mu  sync.Mutex
	w   io.Writer
	seq uint64
}

func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{w: w}
}

// Emit writes event as a single line.
func (e *JSONEmitter) Emit(event Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := recordFor(event)
	rec.Seq = e.seq + 1
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	if _, err := e.w.Write(append(line, '\n')); err != nil {
		return err
	}
	e.seq = rec.Seq
	return nil
}

// JSONEmitterHandler adapts emitter to a bus Handler. Write failures are
// logged and dropped.
func JSONEmitterHandler(emitter *JSONEmitter, logger *zap.Logger) Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(e Event) {
		if err := emitter.Emit(e); err != nil {
			logger.Warn("dropping JSON event", zap.String("type", string(e.Type)), zap.Error(err))
		}
	}
}

func recordFor(e Event) Record {
	rec := Record{
		Type:      string(e.Type),
		Timestamp: e.Time,
		Batch:     e.Batch,
		Reviewer:  e.Reviewer,
		Round:     e.Round,
		Error:     e.Error,
	}
	switch p := e.Payload.(type) {
	case nil:
	case map[string]any:
		rec.Payload = p
	default:
		rec.Payload = map[string]any{"value": p}
	}
	return rec
}
