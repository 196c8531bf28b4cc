package session

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// signalKind identifies a latched signal. Priority order in Next
// matches original_source/src/signals.c's signals_next.
type signalKind int

const (
	sigNone signalKind = iota
	sigInterrupt
	sigTerminate
	sigAlarm
	sigPipe
	sigQuit
	sigWindow
)

// SignalLatch stores one bit per signal kind, set from signal-delivery
// context and drained synchronously by the orchestrator at tick
// boundaries (spec.md §5). It is the Go expression of
// original_source/src/signals.c's latch, built on os/signal the way
// the teacher's pkg/goturbotui/screen.go registers SIGWINCH, rather
// than a raw sigaction syscall wrapper.
type SignalLatch struct {
	mu                                               sync.Mutex
	interrupt, terminate, alarm, pipe, quit, window bool

	ch chan os.Signal
}

// NewSignalLatch installs handlers for INT, TERM, QUIT, PIPE, ALRM and
// WINCH and starts draining them into the latch.
func NewSignalLatch() *SignalLatch {
	l := &SignalLatch{ch: make(chan os.Signal, 16)}
	signal.Notify(l.ch,
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
		syscall.SIGPIPE, syscall.SIGALRM, syscall.SIGWINCH,
	)
	go l.run()
	return l
}

func (l *SignalLatch) run() {
	for sig := range l.ch {
		l.handle(sig)
	}
}

func (l *SignalLatch) handle(sig os.Signal) {
	l.mu.Lock()

	if sig == syscall.SIGINT && l.interrupt {
		// A second SIGINT before the first is drained forces immediate
		// termination: stop intercepting and re-raise with default
		// disposition, per original_source/src/signals.c.
		l.mu.Unlock()
		signal.Reset(syscall.SIGINT)
		_ = syscall.Kill(os.Getpid(), syscall.SIGINT)
		return
	}

	switch sig {
	case syscall.SIGINT:
		l.interrupt = true
	case syscall.SIGTERM:
		l.terminate = true
	case syscall.SIGQUIT:
		l.quit = true
	case syscall.SIGPIPE:
		l.pipe = true
	case syscall.SIGALRM:
		l.alarm = true
	case syscall.SIGWINCH:
		l.window = true
	}

	l.mu.Unlock()
}

// Next pops and clears the highest-priority latched signal, or sigNone
// if nothing is pending.
func (l *SignalLatch) Next() signalKind {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.interrupt:
		l.interrupt = false
		return sigInterrupt
	case l.terminate:
		l.terminate = false
		return sigTerminate
	case l.alarm:
		l.alarm = false
		return sigAlarm
	case l.pipe:
		l.pipe = false
		return sigPipe
	case l.quit:
		l.quit = false
		return sigQuit
	case l.window:
		l.window = false
		return sigWindow
	}
	return sigNone
}

// raise injects a signal directly into the latch; used by tests that
// can't (and shouldn't) send real OS signals to the test process.
func (l *SignalLatch) raise(kind signalKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch kind {
	case sigInterrupt:
		l.interrupt = true
	case sigTerminate:
		l.terminate = true
	case sigAlarm:
		l.alarm = true
	case sigPipe:
		l.pipe = true
	case sigQuit:
		l.quit = true
	case sigWindow:
		l.window = true
	}
}

// Stop releases the OS signal registration.
func (l *SignalLatch) Stop() {
	signal.Stop(l.ch)
}
