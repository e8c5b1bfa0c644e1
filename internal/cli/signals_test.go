package cli

import (
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestWatcher(cancel context.CancelFunc, exit func(int)) *interruptWatcher {
	w := newInterruptWatcher(cancel, nil)
	w.exit = exit
	w.watch(false)
	return w
}

func TestInterruptWatcher_FirstSignalCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var exitCode atomic.Int32
	w := newTestWatcher(cancel, func(code int) { exitCode.Store(int32(code)) })
	defer w.stop()

	w.signals <- syscall.SIGINT

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
	assert.Equal(t, int32(0), exitCode.Load())
}

func TestInterruptWatcher_SecondSignalExits(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	exited := make(chan int, 1)
	w := newTestWatcher(cancel, func(code int) { exited <- code })

	w.signals <- syscall.SIGINT
	w.signals <- syscall.SIGTERM

	select {
	case code := <-exited:
		assert.Equal(t, forcedExitCode, code)
	case <-time.After(time.Second):
		t.Fatal("watcher did not exit on second signal")
	}
	w.stop()
}

func TestInterruptWatcher_StopTwice(t *testing.T) {
	w := newTestWatcher(func() {}, func(int) {})
	w.stop()
	w.stop()

	select {
	case <-w.done:
	default:
		t.Fatal("goroutine still running after stop")
	}
}
