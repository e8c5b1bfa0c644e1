package tui

import (
	"bytes"
	"sync"
)

// LogMsg carries one log line into the model's log pane.
type LogMsg struct {
	Line string
}

const (
	logQueueSize   = 256
	maxLogLineSize = 2000
)

// LogWriter is a zap sink that forwards complete lines to a Sender.
// Lines are queued and sent from a separate goroutine because Send
// blocks until the program's event loop is running. When the queue is
// full, lines are dropped rather than stalling the logger.
type LogWriter struct {
	sender  Sender
	mu      sync.Mutex
	pending []byte
	queue   chan string
	stopped bool
	drained chan struct{}
}

func NewLogWriter(sender Sender) *LogWriter {
	w := &LogWriter{
		sender:  sender,
		queue:   make(chan string, logQueueSize),
		drained: make(chan struct{}),
	}
	go w.forward()
	return w
}

func (w *LogWriter) forward() {
	defer close(w.drained)
	for line := range w.queue {
		if w.sender != nil {
			w.sender.Send(LogMsg{Line: line})
		}
	}
}

func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, p...)
	for {
		before, after, found := bytes.Cut(w.pending, []byte{'\n'})
		if !found {
			break
		}
		w.enqueue(before)
		w.pending = after
	}
	if len(w.pending) == 0 {
		w.pending = nil
	}
	return len(p), nil
}

// Sync pushes a trailing partial line, if any.
func (w *LogWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) > 0 {
		w.enqueue(w.pending)
		w.pending = nil
	}
	return nil
}

// Close syncs and waits for queued lines to be delivered. Later writes
// are discarded.
func (w *LogWriter) Close() error {
	_ = w.Sync()

	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()

	<-w.drained
	return nil
}

// enqueue requires mu.
func (w *LogWriter) enqueue(raw []byte) {
	if w.stopped {
		return
	}
	line := bytes.TrimRight(raw, "\r")
	if len(line) == 0 {
		return
	}
	text := string(line)
	if len(text) > maxLogLineSize {
		text = text[:maxLogLineSize] + "..."
	}
	select {
	case w.queue <- text:
	default:
	}
}
