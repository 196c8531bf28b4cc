package session

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stlalpha/tripipe/internal/termio"
)

type fakeGeometry struct{ w, h int }

func (f fakeGeometry) FastSize() (int, int, bool) { return f.w, f.h, true }

func newTestSession(input string) (*Session, *bytes.Buffer) {
	adapter := termio.New(nil, fakeGeometry{80, 24})
	signals := &SignalLatch{}
	out := &bytes.Buffer{}
	sess := New(adapter, signals, strings.NewReader(input), out)
	return sess, out
}

func TestTickEchoesPlainTextPassThrough(t *testing.T) {
	sess, out := newTestSession("")
	if err := sess.Adapter.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	sess.Adapter.ToInterface.Clear()

	sess.Adapter.FromClient.AppendByteArray([]byte("hi"))
	done, err := sess.Tick()
	if err != nil || done {
		t.Fatalf("Tick = (%v, %v), want (false, nil)", done, err)
	}
	if got := out.String(); got != "hi" {
		t.Fatalf("flushed output = %q, want %q", got, "hi")
	}
}

func TestTickReadsMoreWhenNothingMoved(t *testing.T) {
	sess, _ := newTestSession("abc")
	sess.Adapter.Init()
	sess.Adapter.ToInterface.Clear()

	done, err := sess.Tick()
	if err != nil || done {
		t.Fatalf("Tick = (%v, %v), want (false, nil)", done, err)
	}
	if got := sess.Adapter.FromInterface.Size(); got != 3 {
		t.Fatalf("FromInterface.Size() = %d, want 3 after blocking read", got)
	}
}

// zeroByteReader mimics a Cc[VTIME]=10 read timeout: it always returns
// (0, nil), never io.EOF.
type zeroByteReader struct{ reads int }

func (r *zeroByteReader) Read(p []byte) (int, error) {
	r.reads++
	return 0, nil
}

func TestTickTreatsZeroByteTimeoutReadAsNotDone(t *testing.T) {
	adapter := termio.New(nil, fakeGeometry{80, 24})
	signals := &SignalLatch{}
	out := &bytes.Buffer{}
	reader := &zeroByteReader{}
	sess := New(adapter, signals, reader, out)
	sess.Adapter.Init()
	sess.Adapter.ToInterface.Clear()

	done, err := sess.Tick()
	if err != nil || done {
		t.Fatalf("Tick = (%v, %v), want (false, nil): a (0, nil) read is a timeout, not EOF", done, err)
	}
	if sess.shutdown {
		t.Fatalf("expected shutdown not latched after a (0, nil) timeout read")
	}
	if reader.reads != 1 {
		t.Fatalf("reads = %d, want exactly 1", reader.reads)
	}
}

func TestTickEndsOnEOFOnceIdle(t *testing.T) {
	sess, _ := newTestSession("")
	sess.Adapter.Init()
	sess.Adapter.ToInterface.Clear()

	done, err := sess.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if done {
		t.Fatalf("expected first EOF tick to only set shutdown")
	}
	if !sess.shutdown {
		t.Fatalf("expected shutdown latched after EOF")
	}

	// Second tick sends the shutdown cursor-home escape and flushes it.
	done, err = sess.Tick()
	if err != nil || done {
		t.Fatalf("Tick = (%v, %v), want (false, nil) while flushing shutdown bytes", done, err)
	}

	// Third tick: nothing left to move, shutdown already latched.
	done, err = sess.Tick()
	if err != nil || !done {
		t.Fatalf("Tick = (%v, %v), want (true, nil) once idle after shutdown", done, err)
	}
}

func TestDrainSignalLatchesShutdownOnInterrupt(t *testing.T) {
	sess, _ := newTestSession("")
	sess.Adapter.Init()
	sess.Signals.raise(sigInterrupt)

	sess.drainSignal()

	if !sess.shutdown {
		t.Fatalf("expected shutdown latched after interrupt")
	}
}

func TestDrainSignalRequestsReformatOnWindowChange(t *testing.T) {
	sess, _ := newTestSession("")
	sess.Adapter.Init()
	sess.Signals.raise(sigWindow)

	sess.drainSignal()

	sess.Adapter.Update() // advanceState should re-enter ASK-SCREEN-SIZE
	if sess.Adapter.Width() != 80 || sess.Adapter.Height() != 24 {
		t.Fatalf("expected geometry re-probed to (80,24), got (%d,%d)", sess.Adapter.Width(), sess.Adapter.Height())
	}
}

func TestDrainSignalIgnoresPipeAndAlarm(t *testing.T) {
	sess, _ := newTestSession("")
	sess.Signals.raise(sigPipe)
	sess.drainSignal()
	if sess.shutdown {
		t.Fatalf("PIPE must not request shutdown")
	}

	sess.Signals.raise(sigAlarm)
	sess.drainSignal()
	if sess.shutdown {
		t.Fatalf("ALRM must not request shutdown")
	}
}

func TestSignalLatchPriorityOrder(t *testing.T) {
	l := &SignalLatch{}
	l.raise(sigWindow)
	l.raise(sigQuit)
	l.raise(sigInterrupt)

	if got := l.Next(); got != sigInterrupt {
		t.Fatalf("Next() = %v, want sigInterrupt first", got)
	}
	if got := l.Next(); got != sigQuit {
		t.Fatalf("Next() = %v, want sigQuit second", got)
	}
	if got := l.Next(); got != sigWindow {
		t.Fatalf("Next() = %v, want sigWindow third", got)
	}
	if got := l.Next(); got != sigNone {
		t.Fatalf("Next() = %v, want sigNone once drained", got)
	}
}
