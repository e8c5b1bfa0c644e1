package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Handler processes an event. Handlers run on the bus's dispatch goroutine
// and must not block for long.
type Handler func(Event)

// Bus provides asynchronous event distribution. Emit never blocks the
// caller; events that do not fit in the buffer are dropped and counted.
type Bus struct {
	Capacity int

	mu       sync.RWMutex
	handlers []Handler
	closed   bool

	events  chan Event
	done    chan struct{}
	dropped atomic.Int64
}

// NewBus creates a new event bus with the specified capacity and starts
// its dispatch goroutine
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 1
	}
	b := &Bus{
		Capacity: capacity,
		events:   make(chan Event, capacity),
		done:     make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for all subsequent events
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Emit stamps the event time and queues it for dispatch.
// Events emitted after Close are discarded.
func (b *Bus) Emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	select {
	case b.events <- e:
	default:
		b.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded because the buffer was full
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close stops accepting events and waits for queued events to be handled
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return nil
	}
	b.closed = true
	close(b.events)
	b.mu.Unlock()

	<-b.done
	return nil
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for e := range b.events {
		b.mu.RLock()
		handlers := b.handlers
		b.mu.RUnlock()
		for _, h := range handlers {
			h(e)
		}
	}
}
