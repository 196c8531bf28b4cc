// Package termio implements the terminal adapter (spec.md §4.4): raw
// mode lifecycle, CSI Device-Status-Report geometry probing, ESC
// sequence classification, and the I/O split between a physical
// terminal interface and a TELNET-framed downstream client peer.
//
// The FSM states/transitions and the raw-mode attribute mask are
// ported from original_source/src/terminal.c's terminal_task_* family
// and terminal_enable_raw_mode/disable_raw_mode; ESC classification is
// a fresh implementation against spec.md §4.4 (terminal.c's own
// terminal_read_from_interface is an unimplemented stub). The
// cross-component clip-transfer pattern (drain-while-available,
// shift-and-dispatch) follows the same file's terminal_read_from_client
// and dispatcher.c.
package termio

import (
	"github.com/stlalpha/tripipe/internal/clip"
	"github.com/stlalpha/tripipe/internal/telnet"
)

// State is the terminal adapter's FSM state (spec.md §4.4).
type State int

const (
	StateNone State = iota
	StateInitEditor
	StateAskScreenSize
	StateGetScreenSize
	StateIdle
)

// Adapter bridges a physical terminal interface and a TELNET-framed
// client peer, per spec.md §4.4's I/O policy.
type Adapter struct {
	state State

	width, height    int
	cursorX, cursorY int
	raw, broken      bool
	shutdown         bool
	reformat         bool

	lastSentWidth, lastSentHeight int

	// FromInterface / ToInterface carry raw bytes to/from the physical
	// terminal. FromClient / ToClient carry TELNET-framed bytes to/from
	// the downstream protocol peer.
	FromInterface *clip.Clip
	ToInterface   *clip.Clip
	FromClient    *clip.Clip
	ToClient      *clip.Clip

	rawMode  RawMode
	geometry GeometryProbe

	negotiator *telnet.Negotiator
}

// New constructs an Adapter. rawMode and geometry may be nil in tests
// that don't exercise raw-mode entry or the fast geometry path.
func New(rawMode RawMode, geometry GeometryProbe) *Adapter {
	a := &Adapter{
		state:         StateNone,
		FromInterface: clip.New(clip.Byte),
		ToInterface:   clip.New(clip.Byte),
		FromClient:    clip.New(clip.Byte),
		ToClient:      clip.New(clip.Byte),
		rawMode:       rawMode,
		geometry:      geometry,
		negotiator:    telnet.NewNegotiator(),
	}
	return a
}

// Init enters raw mode (if a RawMode was supplied) and starts the FSM
// at INIT-EDITOR.
func (a *Adapter) Init() error {
	if a.rawMode != nil {
		if err := a.rawMode.Enter(); err != nil {
			a.broken = true
			return err
		}
		a.raw = true
		a.ToInterface.AppendByteArray([]byte("\x1b7\x1b[?47h"))
	}
	a.state = StateInitEditor
	a.advanceState()
	return nil
}

// Shutdown marks the adapter for orderly termination: a cursor-home
// escape is queued and raw mode is restored on the next Deinit call.
func (a *Adapter) Shutdown() {
	a.shutdown = true
	a.ToInterface.AppendByteArray([]byte("\x1b[H"))
}

// Deinit restores cooked mode. Idempotent.
func (a *Adapter) Deinit() error {
	if !a.raw {
		return nil
	}
	a.ToInterface.AppendByteArray([]byte("\x1b[?47l\x1b8"))
	a.raw = false
	if a.rawMode != nil {
		return a.rawMode.Restore()
	}
	return nil
}

// Broken reports whether a fatal condition (e.g. a malformed DSR
// reply) has been latched.
func (a *Adapter) Broken() bool { return a.broken }

// Width and Height report the last-known terminal geometry (zero until
// the probe completes).
func (a *Adapter) Width() int  { return a.width }
func (a *Adapter) Height() int { return a.height }

// Reformat requests a geometry re-probe on the next Update (spec.md
// §4.5 step 1: WINCH sets this).
func (a *Adapter) Reformat() { a.reformat = true }

// Update drains both inbound clips, advances the FSM, and emits any
// outbound negotiation/geometry traffic. It returns whether any bytes
// were produced or consumed this call.
func (a *Adapter) Update() bool {
	if a.broken {
		return false
	}

	a.advanceState()
	movedInterface := a.drainFromInterface()
	movedClient := a.drainFromClient()
	a.advanceState()
	movedNegotiation := a.negotiateClient()

	return movedInterface || movedClient || movedNegotiation
}

// advanceState runs the FSM until it reaches a suspend point (a state
// that needs more input, or IDLE with nothing to do), mirroring
// terminal.c's terminal_update_state "repeat && !broken" loop.
func (a *Adapter) advanceState() {
	for !a.broken {
		switch a.state {
		case StateInitEditor:
			a.cursorX, a.cursorY = 0, 0
			a.state = StateAskScreenSize

		case StateAskScreenSize:
			if a.geometry != nil {
				if w, h, ok := a.geometry.FastSize(); ok {
					a.width, a.height = w, h
					a.reformat = false
					a.state = StateIdle
					continue
				}
			}
			a.ToInterface.AppendByteArray([]byte(geometryProbeSequence))
			a.state = StateGetScreenSize
			return

		case StateGetScreenSize:
			return // resumed by drainFromInterface when a reply arrives

		case StateIdle:
			if a.reformat {
				a.state = StateAskScreenSize
				continue
			}
			return

		default:
			return
		}
	}
}

// drainFromInterface classifies and dispatches every complete frame
// currently queued in FromInterface. Plain text passes through to the
// client as keystroke data; CSI replies are consumed by the FSM when
// in GET-SCREEN-SIZE, otherwise passed through to the client as well
// (arrow keys etc. are input the client peer should see).
func (a *Adapter) drainFromInterface() bool {
	moved := false

	for {
		buf := a.FromInterface.GetByteArray()
		if len(buf) == 0 {
			return moved
		}

		if buf[0] != esc {
			n := NonBlockingLength(buf)
			if n == 0 {
				return moved
			}
			text := a.FromInterface.Shift(n)
			a.ToClient.AppendClip(text)
			text.Clear()
			moved = true
			continue
		}

		n := BlockingLength(buf)
		if n == 0 {
			return moved // incomplete, wait for more bytes
		}

		seq := a.FromInterface.Shift(n)
		bytes := seq.GetByteArray()
		seq.Clear()
		moved = true

		if a.state == StateGetScreenSize && n > 1 {
			rows, cols, ok := parseDSRReply(bytes)
			if ok {
				a.width, a.height = cols, rows
				a.reformat = false
				a.state = StateIdle
				a.advanceState()
				continue
			}
			a.broken = true
			return moved
		}

		if n > 1 {
			a.ToClient.AppendByteArray(bytes)
		}
	}
}

// drainFromClient classifies and dispatches every complete TELNET
// frame currently queued in FromClient: IAC commands are handled by
// the Q-method negotiator, plain text passes through to the interface
// for display.
func (a *Adapter) drainFromClient() bool {
	moved := false

	for {
		buf := a.FromClient.GetByteArray()
		if len(buf) == 0 {
			return moved
		}

		if buf[0] != telnet.IAC {
			n := telnet.NonBlockingLength(buf)
			if n == 0 {
				return moved
			}
			text := a.FromClient.Shift(n)
			a.ToInterface.AppendClip(text)
			text.Clear()
			moved = true
			continue
		}

		n := telnet.IACSequenceLength(buf)
		if n == 0 {
			return moved
		}

		seq := a.FromClient.Shift(n)
		bytes := seq.GetByteArray()
		seq.Clear()
		moved = true

		a.handleClientIAC(bytes)
	}
}

func (a *Adapter) handleClientIAC(seq []byte) {
	if len(seq) < 2 {
		return
	}
	switch seq[1] {
	case telnet.DO, telnet.DONT, telnet.WILL, telnet.WONT:
		if len(seq) < 3 {
			return
		}
		opt := telnet.OptionCode(seq[2])
		if reply := a.negotiator.Receive(seq[1], opt); reply != nil {
			a.ToClient.AppendByteArray(reply)
		}
	}
}

// negotiateClient emits any spontaneous WILL/DO this side wants, and a
// fresh NAWS subnegotiation whenever the client has NAWS enabled and
// geometry changed since the last one sent.
func (a *Adapter) negotiateClient() bool {
	moved := false

	if out := a.negotiator.SpontaneousInitiate(); out != nil {
		a.ToClient.AppendByteArray(out)
		moved = true
	}

	if a.width > 0 && a.height > 0 && a.negotiator.LocalEnabled(telnet.OptNAWS) {
		if a.width != a.lastSentWidth || a.height != a.lastSentHeight {
			frame := telnet.SerializeNAWS(uint16(a.width), uint16(a.height))
			a.ToClient.AppendByteArray(frame)
			a.lastSentWidth, a.lastSentHeight = a.width, a.height
			moved = true
		}
	}

	return moved
}
