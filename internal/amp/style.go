package amp

// Style holds one cell's styling. FgSet/BgSet record whether a color is
// active at all (an unset color renders as terminal default). Broken
// and Reset are runtime-only flags per spec.md §3: they are never part
// of the 7-byte serialized form.
type Style struct {
	FgR, FgG, FgB byte
	BgR, BgG, BgB byte

	FgSet         bool
	BgSet         bool
	Hidden        bool
	Faint         bool
	Italic        bool
	Underline     bool
	Blinking      bool
	Strikethrough bool

	// Broken marks a style read from an out-of-range cell; never
	// serialized.
	Broken bool
	// Reset requests an explicit SGR 0 marker; never serialized.
	Reset bool
}

// Serialize encodes s into the 7-byte on-wire cell layout: FG R,G,B;
// BG R,G,B; one packed flag byte (LSB first: fg, bg, hidden, faint,
// italic, underline, blinking, strikethrough).
func (s Style) Serialize() [StyleSize]byte {
	var out [StyleSize]byte
	out[0], out[1], out[2] = s.FgR, s.FgG, s.FgB
	out[3], out[4], out[5] = s.BgR, s.BgG, s.BgB

	var flags byte
	setBit := func(bit uint, on bool) {
		if on {
			flags |= 1 << bit
		}
	}
	setBit(0, s.FgSet)
	setBit(1, s.BgSet)
	setBit(2, s.Hidden)
	setBit(3, s.Faint)
	setBit(4, s.Italic)
	setBit(5, s.Underline)
	setBit(6, s.Blinking)
	setBit(7, s.Strikethrough)
	out[6] = flags

	return out
}

// DeserializeStyle decodes a 7-byte cell. Fewer than 7 bytes yields a
// broken style with every other field zero, per spec.md §6's cell
// layout contract.
func DeserializeStyle(data []byte) Style {
	if len(data) < StyleSize {
		return Style{Broken: true}
	}

	flags := data[6]
	bit := func(n uint) bool { return flags&(1<<n) != 0 }

	return Style{
		FgR: data[0], FgG: data[1], FgB: data[2],
		BgR: data[3], BgG: data[4], BgB: data[5],
		FgSet:         bit(0),
		BgSet:         bit(1),
		Hidden:        bit(2),
		Faint:         bit(3),
		Italic:        bit(4),
		Underline:     bit(5),
		Blinking:      bit(6),
		Strikethrough: bit(7),
	}
}

// SetStyle writes the full style of (x,y). Fails on out-of-range (x,y).
func (g *Grid) SetStyle(x, y int, s Style) bool {
	idx := g.cellIndex(x, y)
	if idx < 0 {
		return false
	}
	bytes := s.Serialize()
	copy(g.style[idx*StyleSize:idx*StyleSize+StyleSize], bytes[:])
	return true
}

// GetStyle returns the style of (x,y). An out-of-range (x,y) returns a
// synthetic style with Broken=true and every other field zero.
func (g *Grid) GetStyle(x, y int) Style {
	idx := g.cellIndex(x, y)
	if idx < 0 {
		return Style{Broken: true}
	}
	off := idx * StyleSize
	return DeserializeStyle(g.style[off : off+StyleSize])
}

// SetFg sets the foreground color and marks it active.
func (g *Grid) SetFg(x, y int, r, g2, b byte) bool {
	s := g.GetStyle(x, y)
	if s.Broken {
		return false
	}
	s.FgR, s.FgG, s.FgB, s.FgSet = r, g2, b, true
	return g.SetStyle(x, y, s)
}

// ResetFg clears the foreground color.
func (g *Grid) ResetFg(x, y int) bool {
	s := g.GetStyle(x, y)
	if s.Broken {
		return false
	}
	s.FgR, s.FgG, s.FgB, s.FgSet = 0, 0, 0, false
	return g.SetStyle(x, y, s)
}

// SetBg sets the background color and marks it active.
func (g *Grid) SetBg(x, y int, r, g2, b byte) bool {
	s := g.GetStyle(x, y)
	if s.Broken {
		return false
	}
	s.BgR, s.BgG, s.BgB, s.BgSet = r, g2, b, true
	return g.SetStyle(x, y, s)
}

// ResetBg clears the background color.
func (g *Grid) ResetBg(x, y int) bool {
	s := g.GetStyle(x, y)
	if s.Broken {
		return false
	}
	s.BgR, s.BgG, s.BgB, s.BgSet = 0, 0, 0, false
	return g.SetStyle(x, y, s)
}
