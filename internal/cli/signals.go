package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// forcedExitCode is used when a second signal arrives before the command
// has wound down.
const forcedExitCode = 130

// interruptWatcher cancels the command context on the first SIGINT or
// SIGTERM. A second signal exits the process, abandoning any reviewer
// CLIs still running.
type interruptWatcher struct {
	cancel context.CancelFunc
	exit   func(code int)
	logger *zap.Logger

	signals chan os.Signal
	quit    chan struct{}
	done    chan struct{}
}

func newInterruptWatcher(cancel context.CancelFunc, logger *zap.Logger) *interruptWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &interruptWatcher{
		cancel:  cancel,
		exit:    os.Exit,
		logger:  logger,
		signals: make(chan os.Signal, 2),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// watch starts the watcher goroutine. With notify false the watcher only
// sees signals sent on w.signals directly.
func (w *interruptWatcher) watch(notify bool) {
	if notify {
		signal.Notify(w.signals, syscall.SIGINT, syscall.SIGTERM)
	}
	go w.loop()
}

func (w *interruptWatcher) loop() {
	defer close(w.done)
	var first os.Signal
	for {
		select {
		case sig := <-w.signals:
			if first != nil {
				w.logger.Warn("second signal, exiting", zap.Stringer("signal", sig))
				w.exit(forcedExitCode)
				return
			}
			first = sig
			w.logger.Info("interrupted, cancelling", zap.Stringer("signal", sig))
			w.cancel()
		case <-w.quit:
			return
		}
	}
}

// stop unregisters the watcher and waits for its goroutine. Safe to call
// more than once.
func (w *interruptWatcher) stop() {
	signal.Stop(w.signals)
	select {
	case <-w.quit:
	default:
		close(w.quit)
	}
	<-w.done
}
