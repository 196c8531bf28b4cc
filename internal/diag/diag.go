// Package diag is the process's diagnostic sink.
//
// It keeps the same Debug-gated convention as the teacher's logging
// package, but adds the buffering policy spec.md §6 requires: while raw
// mode is active, nothing may reach stderr mid-session, so every
// message is appended to an in-memory buffer and only drained to
// stderr once cooked mode is restored.
package diag

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// DebugEnabled controls whether Debug() produces output. Set via the
// -debug flag.
var DebugEnabled bool

type sinkWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	raw  bool
	dest io.Writer
}

func (w *sinkWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.raw {
		return w.buf.Write(p)
	}
	return w.dest.Write(p)
}

// setDest swaps the writer used once raw mode is off. Passing nil
// restores the stderr default.
func (w *sinkWriter) setDest(dest io.Writer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if dest == nil {
		dest = os.Stderr
	}
	w.dest = dest
}

func (w *sinkWriter) enterRaw() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.raw = true
}

func (w *sinkWriter) leaveRaw() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.raw = false
	drained := w.buf.String()
	w.buf.Reset()
	if drained != "" {
		w.dest.Write([]byte(drained))
	}
	return drained
}

var (
	writer = &sinkWriter{dest: os.Stderr}
	logger = log.New(writer, "", log.LstdFlags)
)

// SetOutput redirects where the sink drains once cooked mode is
// active. The default is os.Stderr, matching spec.md §6. cmd/tripipe
// uses this when -log names a file.
func SetOutput(w io.Writer) {
	writer.setDest(w)
}

// EnterRaw switches the sink to buffered mode. Safe to call repeatedly.
func EnterRaw() {
	writer.enterRaw()
}

// LeaveRaw switches the sink back to direct-to-dest mode, writes
// whatever had accumulated in the buffer while raw mode was active to
// the current dest (stderr, or a log file set via SetOutput), and
// returns that text for callers that want to inspect it too.
func LeaveRaw() string {
	return writer.leaveRaw()
}

// Debug logs a message only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if !DebugEnabled {
		return
	}
	logger.Print("DEBUG: " + fmt.Sprintf(format, args...))
}

// Error logs a message unconditionally.
func Error(format string, args ...any) {
	logger.Print("ERROR: " + fmt.Sprintf(format, args...))
}

var _ io.Writer = (*sinkWriter)(nil)
