package amp

import (
	"strconv"
	"strings"
)

// Palette selects how colors are rendered into SGR codes.
type Palette int

const (
	Palette16 Palette = iota
	PaletteTrueColor
)

// palette16 is the standard 16-entry ANSI/xterm color table, indices
// 0..7 normal, 8..15 bright, used for nearest-color matching when
// rendering in Palette16 mode.
var palette16 = [16][3]int{
	{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
	{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
	{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}

func nearestPaletteIndex(r, g, b byte) int {
	best, bestDist := 0, -1
	for i, c := range palette16 {
		dr := int(r) - c[0]
		dg := int(g) - c[1]
		db := int(b) - c[2]
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// RowToANSI serializes row y, diffing each cell's style against the
// previous cell's (row starts from an implicit unstyled state) and
// ending with a mandatory SGR reset.
func (g *Grid) RowToANSI(y int, palette Palette) string {
	return g.RowCutToANSI(0, y, g.width, palette)
}

// RowCutToANSI serializes w cells of row y starting at column x.
func (g *Grid) RowCutToANSI(x, y, w int, palette Palette) string {
	var sb strings.Builder
	prev := Style{}

	for i := 0; i < w; i++ {
		cx := x + i
		style := g.GetStyle(cx, y)
		if style.Broken {
			sb.WriteString(" ")
			continue
		}

		sb.WriteString(styleUpdateToANS(prev, style, palette))

		glyph := g.GetGlyph(cx, y)
		if len(glyph) == 0 {
			sb.WriteString(" ")
		} else {
			sb.Write(glyph)
		}

		prev = style
	}

	sb.WriteString("\x1b[0m")
	return sb.String()
}

// ToANSI serializes every row, joined by CRLF.
func (g *Grid) ToANSI(palette Palette) string {
	rows := make([]string, g.height)
	for y := 0; y < g.height; y++ {
		rows[y] = g.RowToANSI(y, palette)
	}
	return strings.Join(rows, "\r\n")
}

// styleUpdateToANS implements spec.md §4.3's style_update_to_ans: if any
// attribute enabled in prev must be turned off, a full SGR reset is
// emitted and next is re-applied from scratch; otherwise only the
// deltas between prev and next are emitted. Never emits an empty CSI.
func styleUpdateToANS(prev, next Style, palette Palette) string {
	if attributeTurnedOff(prev, next) {
		codes := sgrCodes(Style{}, next, palette)
		if len(codes) == 0 {
			return "\x1b[0m"
		}
		return "\x1b[0m\x1b[" + strings.Join(codes, ";") + "m"
	}

	codes := sgrCodes(prev, next, palette)
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func attributeTurnedOff(prev, next Style) bool {
	return (prev.Hidden && !next.Hidden) ||
		(prev.Faint && !next.Faint) ||
		(prev.Italic && !next.Italic) ||
		(prev.Underline && !next.Underline) ||
		(prev.Blinking && !next.Blinking) ||
		(prev.Strikethrough && !next.Strikethrough) ||
		(prev.FgSet && !next.FgSet) ||
		(prev.BgSet && !next.BgSet)
}

// sgrCodes returns the SGR parameter codes needed to move from prev to
// next, assuming no attribute needs to be turned off (the caller
// handles that via a full reset before calling this with prev={}).
func sgrCodes(prev, next Style, palette Palette) []string {
	var codes []string

	if next.Faint && !prev.Faint {
		codes = append(codes, "2")
	}
	if next.Italic && !prev.Italic {
		codes = append(codes, "3")
	}
	if next.Underline && !prev.Underline {
		codes = append(codes, "4")
	}
	if next.Blinking && !prev.Blinking {
		codes = append(codes, "5")
	}
	if next.Hidden && !prev.Hidden {
		codes = append(codes, "8")
	}
	if next.Strikethrough && !prev.Strikethrough {
		codes = append(codes, "9")
	}

	if next.FgSet && (!prev.FgSet || colorChanged(prev, next, false)) {
		codes = append(codes, fgCodes(next, palette)...)
	}
	if next.BgSet && (!prev.BgSet || colorChanged(prev, next, true)) {
		codes = append(codes, bgCodes(next, palette)...)
	}

	return codes
}

func colorChanged(prev, next Style, background bool) bool {
	if background {
		return prev.BgR != next.BgR || prev.BgG != next.BgG || prev.BgB != next.BgB
	}
	return prev.FgR != next.FgR || prev.FgG != next.FgG || prev.FgB != next.FgB
}

func fgCodes(s Style, palette Palette) []string {
	if palette == PaletteTrueColor {
		return []string{"38;2;" + rgbParams(s.FgR, s.FgG, s.FgB)}
	}

	idx := nearestPaletteIndex(s.FgR, s.FgG, s.FgB)
	if idx < 8 {
		return []string{strconv.Itoa(30 + idx)}
	}
	// Bright foreground, emulated with the classic-SGR policy of bold
	// plus the base color.
	return []string{"1", strconv.Itoa(30 + idx - 8)}
}

func bgCodes(s Style, palette Palette) []string {
	if palette == PaletteTrueColor {
		return []string{"48;2;" + rgbParams(s.BgR, s.BgG, s.BgB)}
	}

	idx := nearestPaletteIndex(s.BgR, s.BgG, s.BgB)
	if idx < 8 {
		return []string{strconv.Itoa(40 + idx)}
	}
	// Bright background per spec.md §4.3: emulated by swapping FG/BG
	// and emitting reverse video (SGR 7).
	return []string{"7", strconv.Itoa(30 + idx - 8)}
}

func rgbParams(r, g, b byte) string {
	return strconv.Itoa(int(r)) + ";" + strconv.Itoa(int(g)) + ";" + strconv.Itoa(int(b))
}
