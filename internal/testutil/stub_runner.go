package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// HandlerFunc answers every invocation of one command.
type HandlerFunc func(ctx context.Context, args []string) (string, error)

type reply struct {
	out string
	err error
}

// script holds the canned replies for one invocation key.
type script struct {
	queue    []reply
	fallback *reply
}

// StubRunner answers git and reviewer CLI invocations from canned
// replies. Exec satisfies git.Runner and Run satisfies provider.Runner.
// Git calls are keyed by their arguments ("diff --cached"); CLI calls by
// command and arguments ("codex exec ...").
type StubRunner struct {
	mu       sync.Mutex
	scripts  map[string]*script
	handlers map[string]HandlerFunc
	calls    []string
}

func NewStubRunner() *StubRunner {
	return &StubRunner{
		scripts:  make(map[string]*script),
		handlers: make(map[string]HandlerFunc),
	}
}

func (s *StubRunner) scriptFor(key string) *script {
	sc, ok := s.scripts[key]
	if !ok {
		sc = &script{}
		s.scripts[key] = sc
	}
	return sc
}

// Stub queues a one-shot reply for key.
func (s *StubRunner) Stub(key string, out string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := s.scriptFor(key)
	sc.queue = append(sc.queue, reply{out: out, err: err})
}

// StubDefault sets the reply used once the queue for key is empty.
func (s *StubRunner) StubDefault(key string, out string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scriptFor(key).fallback = &reply{out: out, err: err}
}

// Handle routes every Run of command to fn.
func (s *StubRunner) Handle(command string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[command] = fn
}

func (s *StubRunner) Exec(_ context.Context, _ string, args ...string) (string, error) {
	return s.answer(strings.Join(args, " "))
}

func (s *StubRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	key := strings.TrimSpace(name + " " + strings.Join(args, " "))

	s.mu.Lock()
	fn := s.handlers[name]
	if fn != nil {
		s.calls = append(s.calls, key)
	}
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, args)
	}
	return s.answer(key)
}

func (s *StubRunner) answer(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, key)

	sc := s.scripts[key]
	switch {
	case sc == nil:
	case len(sc.queue) > 0:
		r := sc.queue[0]
		sc.queue = sc.queue[1:]
		return r.out, r.err
	case sc.fallback != nil:
		return sc.fallback.out, sc.fallback.err
	}
	return "", fmt.Errorf("unexpected call: %s", key)
}

// CallsFor counts recorded invocations matching args joined by spaces.
func (s *StubRunner) CallsFor(args ...string) int {
	key := strings.Join(args, " ")
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == key {
			n++
		}
	}
	return n
}

// Calls returns every recorded invocation in order.
func (s *StubRunner) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
