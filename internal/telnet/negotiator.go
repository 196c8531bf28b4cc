package telnet

// Negotiator tracks Q-method option state per spec.md §4.2's table: one
// local side (answers DO/DONT, emits WILL/WONT) and one remote side
// (answers WILL/WONT, emits DO/DONT) per option code.
type Negotiator struct {
	local  map[OptionCode]*localSide
	remote map[OptionCode]*remoteSide
}

type localSide struct {
	wanted      bool
	enabled     bool
	pendingWill bool
	pendingWont bool
}

type remoteSide struct {
	wanted     bool
	enabled    bool
	pendingDo  bool
	pendingDont bool
}

// NewNegotiator returns a Negotiator with no options enabled or wanted.
func NewNegotiator() *Negotiator {
	return &Negotiator{
		local:  map[OptionCode]*localSide{},
		remote: map[OptionCode]*remoteSide{},
	}
}

func (n *Negotiator) localOf(opt OptionCode) *localSide {
	s, ok := n.local[opt]
	if !ok {
		s = &localSide{}
		n.local[opt] = s
	}
	return s
}

func (n *Negotiator) remoteOf(opt OptionCode) *remoteSide {
	s, ok := n.remote[opt]
	if !ok {
		s = &remoteSide{}
		n.remote[opt] = s
	}
	return s
}

// WantLocal marks a local-side option (one we offer via WILL) as
// desired. SpontaneousInitiate will emit WILL for it if it isn't
// already enabled or pending.
func (n *Negotiator) WantLocal(opt OptionCode) {
	n.localOf(opt).wanted = true
}

// WantRemote marks a remote-side option (one we request via DO) as
// desired.
func (n *Negotiator) WantRemote(opt OptionCode) {
	n.remoteOf(opt).wanted = true
}

// LocalEnabled reports whether the local side of opt is currently on.
func (n *Negotiator) LocalEnabled(opt OptionCode) bool {
	return n.localOf(opt).enabled
}

// RemoteEnabled reports whether the remote side of opt is currently on.
func (n *Negotiator) RemoteEnabled(opt OptionCode) bool {
	return n.remoteOf(opt).enabled
}

// Receive processes one inbound IAC command (DO/DONT/WILL/WONT) for
// opt and returns the reply to send, or nil if no reply is called for.
func (n *Negotiator) Receive(cmd byte, opt OptionCode) []byte {
	switch cmd {
	case DO:
		s := n.localOf(opt)
		wasPending := s.pendingWill
		s.pendingWill, s.pendingWont = false, false
		if s.enabled {
			return nil
		}
		s.enabled = true
		if wasPending {
			return nil
		}
		return []byte{IAC, WILL, byte(opt)}

	case DONT:
		s := n.localOf(opt)
		wasPending := s.pendingWont
		s.pendingWill, s.pendingWont = false, false
		if !s.enabled {
			return nil
		}
		s.enabled = false
		if wasPending {
			return nil
		}
		return []byte{IAC, WONT, byte(opt)}

	case WILL:
		s := n.remoteOf(opt)
		wasPending := s.pendingDo
		s.pendingDo, s.pendingDont = false, false
		if s.enabled {
			return nil
		}
		s.enabled = true
		if wasPending {
			return nil
		}
		return []byte{IAC, DO, byte(opt)}

	case WONT:
		s := n.remoteOf(opt)
		wasPending := s.pendingDont
		s.pendingDo, s.pendingDont = false, false
		if !s.enabled {
			return nil
		}
		s.enabled = false
		if wasPending {
			return nil
		}
		return []byte{IAC, DONT, byte(opt)}
	}

	return nil
}

// SpontaneousInitiate emits WILL/DO for every wanted-but-not-pending
// option and marks it pending. Call once per tick; the returned bytes
// (possibly empty) should be written to the outbound clip in the
// returned order.
func (n *Negotiator) SpontaneousInitiate() []byte {
	var out []byte

	for opt, s := range n.local {
		if s.wanted && !s.enabled && !s.pendingWill && !s.pendingWont {
			s.pendingWill = true
			out = append(out, IAC, WILL, byte(opt))
		}
	}
	for opt, s := range n.remote {
		if s.wanted && !s.enabled && !s.pendingDo && !s.pendingDont {
			s.pendingDo = true
			out = append(out, IAC, DO, byte(opt))
		}
	}

	return out
}
