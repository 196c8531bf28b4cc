// Package session implements the single-peer tick loop that ties the
// terminal adapter to the process's stdin/stdout (spec.md §4.5) and
// the signal latch that drives its shutdown/reformat transitions
// (spec.md §5).
//
// The loop shape (drain signals, move bytes, flush, block-read only
// when nothing moved) is grounded on original_source/src/main.c's
// outer loop and original_source/src/dispatcher.c's move-or-append
// clip transfer pattern. Per spec.md §9's Open Question resolution,
// exactly one peer (the terminal adapter) is primary; the adapter's
// own FromClient/ToClient clips remain an internal extension seam for
// an embedding application's protocol peer, not wired to stdin/stdout
// here.
package session

import (
	"io"

	"github.com/stlalpha/tripipe/internal/diag"
	"github.com/stlalpha/tripipe/internal/termio"
)

// readBufferSize is the chunk size used for blocking reads from the
// external input stream. spec.md §6 requires at least 4KiB of slack
// for a single burst of pasted input.
const readBufferSize = 8192

// Session owns one terminal adapter and drives it against an external
// byte stream.
type Session struct {
	Adapter *termio.Adapter
	Signals *SignalLatch

	// OnReady, if set, runs once raw mode has been entered and the
	// FSM has taken its first ASK-SCREEN-SIZE step (reading geometry
	// through the fast path, or queuing the DSR probe when that path is
	// unavailable), but before the tick loop starts. cmd/tripipe uses this to write the boot-banner
	// OSC window-title escape directly to stdout (SPEC_FULL.md §10),
	// since original_source/src/main.c's main_init() only emits that
	// banner once raw mode is confirmed active.
	OnReady func()

	in  io.Reader
	out io.Writer

	shutdown     bool
	shutdownSent bool
}

// New constructs a Session reading from in and writing to out.
func New(adapter *termio.Adapter, signals *SignalLatch, in io.Reader, out io.Writer) *Session {
	return &Session{
		Adapter: adapter,
		Signals: signals,
		in:      in,
		out:     out,
	}
}

// Run drives the tick loop until shutdown is latched and no further
// bytes are in flight, or the input stream is exhausted.
func (s *Session) Run() error {
	if err := s.Adapter.Init(); err != nil {
		return err
	}
	defer s.Adapter.Deinit()

	if s.OnReady != nil {
		s.OnReady()
	}

	for {
		done, err := s.Tick()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Tick runs exactly one iteration of the 7-step loop (spec.md §4.5):
// drain the signal latch, act on shutdown/reformat, run the adapter
// update, flush outbound bytes, and block for more input only if
// nothing moved this round. It reports whether the session is done.
func (s *Session) Tick() (done bool, err error) {
	s.drainSignal()

	if s.shutdown && !s.shutdownSent {
		s.Adapter.Shutdown()
		s.shutdownSent = true
	}

	moved := s.Adapter.Update()

	if !s.Adapter.ToInterface.IsEmpty() {
		out := s.Adapter.ToInterface.GetByteArray()
		if _, werr := s.out.Write(out); werr != nil {
			return true, werr
		}
		s.Adapter.ToInterface.Clear()
		moved = true
	}

	if s.Adapter.Broken() {
		diag.Error("terminal adapter broken, ending session")
		return true, nil
	}

	if moved {
		return false, nil
	}

	if s.shutdown {
		return true, nil
	}

	_, rerr := s.readMore()
	if rerr == io.EOF {
		s.shutdown = true
		return false, nil
	}
	if rerr != nil {
		return true, rerr
	}
	// A (0, nil) read is what a Cc[VTIME]=10 read timeout produces
	// (spec.md §4.4), not end of input; only io.EOF above ends the
	// session (spec.md §6). Loop back around and try again.
	return false, nil
}

// readMore blocks for at least one byte of input and appends whatever
// arrived to the adapter's interface-inbound clip.
func (s *Session) readMore() (int, error) {
	buf := make([]byte, readBufferSize)
	n, err := s.in.Read(buf)
	if n > 0 {
		s.Adapter.FromInterface.AppendByteArray(buf[:n])
	}
	return n, err
}

// drainSignal pops one latched signal and applies its effect. INT,
// TERM and QUIT request shutdown; WINCH requests a geometry reformat;
// PIPE and ALRM are latched and cleared with no further action.
func (s *Session) drainSignal() {
	switch s.Signals.Next() {
	case sigInterrupt, sigTerminate, sigQuit:
		s.shutdown = true
	case sigWindow:
		s.Adapter.Reformat()
	case sigPipe, sigAlarm:
		// latched and cleared; no action per spec.md §5.
	}
}
