// Package amp implements the cell-addressable styled character grid:
// a fixed W×H matrix of 5-byte glyph cells and 7-byte style cells, with
// UTF-8 glyph validation and ANSI SGR row serialization.
//
// The cell byte layout and glyph validation rules are ported directly
// from original_source/src/amp.h (amp_utf8_code_point_size,
// amp_set_glyph, amp_style_cell_serialize/deserialize); the row/style
// diffing algorithm is a genuine expansion beyond that file, which only
// stubs a single-flag (italic-only) row serializer. The diffing
// approach — tracking a running "previous style" across a row and only
// emitting SGR deltas — is grounded on the teacher's
// pkg/goturbotui/canvas.go MemoryCanvas.Render, adapted to support both
// a 16-color palette and 24-bit truecolor instead of canvas.go's
// always-full-reset Style.ToANSI.
package amp

const (
	GlyphSize = 5
	StyleSize = 7
	CellSize  = GlyphSize + StyleSize
)

// Grid is a fixed-size cell-addressable styled character grid.
type Grid struct {
	width, height int
	glyph         []byte
	style         []byte
}

// Required returns the number of bytes a width×height grid needs.
func Required(width, height int) int {
	return width * height * CellSize
}

// New allocates a grid with its own backing storage.
func New(width, height int) *Grid {
	g := &Grid{width: width, height: height}
	cells := width * height
	g.glyph = make([]byte, cells*GlyphSize)
	g.style = make([]byte, cells*StyleSize)
	return g
}

// NewWithBuffer builds a grid over caller-owned storage, per spec.md
// §4.3: the grid uses as many whole cells as buf can hold and reports
// the number of bytes a full width×height grid actually requires so
// the caller can detect under-sizing and re-allocate.
func NewWithBuffer(width, height int, buf []byte) (g *Grid, bytesRequired int) {
	bytesRequired = Required(width, height)
	cells := len(buf) / CellSize
	if want := width * height; cells > want {
		cells = want
	}

	g = &Grid{width: width, height: height}
	g.glyph = buf[:cells*GlyphSize]
	g.style = buf[cells*GlyphSize : cells*GlyphSize+cells*StyleSize]
	g.Clear()
	return g, bytesRequired
}

// Width and Height report the grid's declared dimensions (not
// necessarily how many cells are actually backed by storage, if
// constructed via NewWithBuffer with an undersized buffer).
func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Clear zero-fills the grid: every cell becomes blank with no style.
func (g *Grid) Clear() {
	for i := range g.glyph {
		g.glyph[i] = 0
	}
	for i := range g.style {
		g.style[i] = 0
	}
}

// cellIndex returns y*width+x, or -1 if (x,y) is out of range or not
// backed by storage.
func (g *Grid) cellIndex(x, y int) int {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return -1
	}
	idx := y*g.width + x
	if (idx+1)*GlyphSize > len(g.glyph) {
		return -1
	}
	return idx
}

// SetGlyph validates and stores a glyph at (x,y). data must contain a
// NUL within its first 5 bytes (a short C-string-style glyph buffer);
// the bytes preceding the NUL are classified as a single UTF-8 code
// point per RFC 3629. Invalid or missing-NUL input is rejected and the
// cell is left unchanged. An out-of-range (x,y) fails.
func (g *Grid) SetGlyph(x, y int, data []byte) bool {
	idx := g.cellIndex(x, y)
	if idx < 0 {
		return false
	}

	limit := len(data)
	if limit > GlyphSize {
		limit = GlyphSize
	}
	nul := -1
	for i := 0; i < limit; i++ {
		if data[i] == 0 {
			nul = i
			break
		}
	}
	if nul < 0 {
		return false
	}

	size := codePointSize(data[:nul])
	if size < 0 || size > 4 {
		return false
	}

	off := idx * GlyphSize
	for i := 0; i < GlyphSize; i++ {
		g.glyph[off+i] = 0
	}
	copy(g.glyph[off:off+size], data[:size])
	return true
}

// GetGlyph returns the stored code point bytes at (x,y) (without the
// trailing NUL). An out-of-range (x,y) returns nil.
func (g *Grid) GetGlyph(x, y int) []byte {
	idx := g.cellIndex(x, y)
	if idx < 0 {
		return nil
	}
	off := idx * GlyphSize
	n := 0
	for n < GlyphSize && g.glyph[off+n] != 0 {
		n++
	}
	out := make([]byte, n)
	copy(out, g.glyph[off:off+n])
	return out
}

// codePointSize classifies the leading UTF-8 code point in b, returning
// its byte length (1..4) or -1 if b is invalid or incomplete. Ported
// directly from original_source/src/amp.h's amp_utf8_code_point_size,
// including its overlong- and surrogate-exclusion rules.
func codePointSize(b []byte) int {
	if len(b) == 0 {
		return -1
	}
	c := b[0]

	if c < 0x80 {
		return 1
	}

	if c >= 0xC2 && c < 0xE0 {
		if len(b) < 2 || !isTrail(b[1]) {
			return -1
		}
		return 2
	}

	if c >= 0xE0 && c < 0xF0 {
		if len(b) < 3 || !isTrail(b[1]) || !isTrail(b[2]) {
			return -1
		}
		if !((c >= 0xE1 || b[1] >= 0xA0) && (c != 0xED || b[1] < 0xA0)) {
			return -1 // overlong E0 80..9F, or surrogate ED A0..BF
		}
		return 3
	}

	if c >= 0xF0 && c < 0xF8 {
		if len(b) < 4 || !isTrail(b[1]) || !isTrail(b[2]) || !isTrail(b[3]) {
			return -1
		}
		if !((c >= 0xF1 || b[1] >= 0x90) && (c < 0xF4 || (c == 0xF4 && b[1] < 0x90))) {
			return -1 // overlong F0 80..8F, or beyond U+10FFFF
		}
		return 4
	}

	return -1
}

func isTrail(b byte) bool { return b >= 0x80 && b <= 0xBF }
