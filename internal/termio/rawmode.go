package termio

import (
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// RawMode enters/exits raw terminal mode. Grounded on the teacher's
// pkg/goturbotui/screen.go TerminalScreen.Init/Close, which use
// golang.org/x/term for the snapshot/raw/restore lifecycle rather than
// a fully hand-rolled termios wrapper (as the unportable
// other_examples/63d57312_kylelemons-goat__term-termio.go.go prototype
// does). term.MakeRaw hardcodes Cc[VMIN]=1, Cc[VTIME]=0 (a blocking
// single-byte read), which spec.md §4.4 overrides to Cc[VMIN]=0,
// Cc[VTIME]=10 (a 1-second read timeout); Enter re-applies that pair
// via the same unix.IoctlGetTermios/IoctlSetTermios(TCSETS) calls the
// teacher's internal/configtool/ui/turbo.go initTerminal uses.
type RawMode interface {
	// Enter snapshots the current TTY attributes and applies the raw
	// mode mask. Idempotent: a second call while already raw is a no-op.
	Enter() error
	// Restore re-applies the snapshot taken by Enter. Idempotent: a
	// call while not raw is a no-op.
	Restore() error
}

// GeometryProbe attempts a direct, syscall-based terminal size query.
// ok is false when the fast path is unavailable and the DSR probe
// (§4.4 ASK-SCREEN-SIZE) must run instead.
type GeometryProbe interface {
	FastSize() (width, height int, ok bool)
}

// TTYRawMode is the real RawMode backed by golang.org/x/term against a
// specific file descriptor (typically os.Stdin.Fd()).
type TTYRawMode struct {
	fd    int
	saved *term.State
}

func NewTTYRawMode(fd int) *TTYRawMode {
	return &TTYRawMode{fd: fd}
}

func (t *TTYRawMode) Enter() error {
	if t.saved != nil {
		return nil
	}
	s, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.saved = s

	termios, err := unix.IoctlGetTermios(t.fd, unix.TCGETS)
	if err != nil {
		term.Restore(t.fd, t.saved)
		t.saved = nil
		return err
	}
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 10
	if err := unix.IoctlSetTermios(t.fd, unix.TCSETS, termios); err != nil {
		term.Restore(t.fd, t.saved)
		t.saved = nil
		return err
	}
	return nil
}

func (t *TTYRawMode) Restore() error {
	if t.saved == nil {
		return nil
	}
	err := term.Restore(t.fd, t.saved)
	t.saved = nil
	return err
}

// TTYGeometryProbe is the real GeometryProbe backed by
// golang.org/x/term's ioctl-based TIOCGWINSZ-equivalent fast path.
type TTYGeometryProbe struct {
	fd int
}

func NewTTYGeometryProbe(fd int) *TTYGeometryProbe {
	return &TTYGeometryProbe{fd: fd}
}

func (p *TTYGeometryProbe) FastSize() (width, height int, ok bool) {
	w, h, err := term.GetSize(p.fd)
	if err != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
