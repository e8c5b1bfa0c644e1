package events

import (
	"sync"

	"go.uber.org/zap"
)

// LogHandler returns a handler that writes events to a structured logger.
// Failure events are logged at warn level, everything else at debug.
func LogHandler(logger *zap.Logger) Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "events"))

	return func(e Event) {
		fields := []zap.Field{zap.String("type", string(e.Type))}
		if e.Batch != "" {
			fields = append(fields, zap.String("batch", e.Batch))
		}
		if e.Reviewer != "" {
			fields = append(fields, zap.String("reviewer", e.Reviewer))
		}
		if e.Round != nil {
			fields = append(fields, zap.Int("round", *e.Round))
		}
		if e.Payload != nil {
			fields = append(fields, zap.Any("payload", e.Payload))
		}

		if e.IsFailure() {
			logger.Warn(e.Error, fields...)
			return
		}
		logger.Debug("event", fields...)
	}
}

// CollectHandler returns a handler that appends events to a slice, plus a
// function returning a snapshot of what was collected.
func CollectHandler() (Handler, func() []Event) {
	var (
		mu        sync.Mutex
		collected []Event
	)
	handler := func(e Event) {
		mu.Lock()
		collected = append(collected, e)
		mu.Unlock()
	}
	snapshot := func() []Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]Event(nil), collected...)
	}
	return handler, snapshot
}
