package termio

import (
	"bytes"
	"strconv"
)

// parseDSRReply parses a complete `ESC [ rows ; cols R` geometry reply.
// seq must be exactly the bytes BlockingLength classified as one CSI
// sequence ending in 'R'.
func parseDSRReply(seq []byte) (rows, cols int, ok bool) {
	if len(seq) < 2 || seq[len(seq)-1] != 'R' {
		return 0, 0, false
	}
	body := seq[2 : len(seq)-1]
	parts := bytes.SplitN(body, []byte(";"), 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	r, errR := strconv.Atoi(string(parts[0]))
	c, errC := strconv.Atoi(string(parts[1]))
	if errR != nil || errC != nil || r <= 0 || c <= 0 {
		return 0, 0, false
	}
	return r, c, true
}

// geometryProbeSequence is written to the interface when the fast-path
// size syscall is unavailable: save cursor, drive it to the bottom
// right corner, request a Device Status Report, then restore the
// cursor. Grounded on spec.md §4.4, which mandates the ESC7/ESC8
// wrapping that original_source/src/terminal.c's C prototype omits.
const geometryProbeSequence = "\x1b7\x1b[999C\x1b[999B\x1b[6n\x1b8"
