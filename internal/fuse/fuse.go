// Package fuse implements a deduplicated, non-aborting internal assertion.
//
// A fuse fires at most once per (file, line) call site: the first trip
// reports through the sink, every subsequent trip from the same site is
// silently absorbed. It never panics and never calls os.Exit; callers
// that hit an invariant break still have to decide for themselves
// whether to set the broken flag and shut down.
package fuse

import (
	"fmt"
	"runtime"
	"sync"
)

// Sink receives the formatted message of a fuse the first time it trips.
type Sink func(msg string)

var (
	mu     sync.Mutex
	tripped = map[string]bool{}
	sink   Sink
)

// SetSink installs the diagnostic sink used by Trip. A nil sink discards
// messages silently (trips are still deduplicated).
func SetSink(s Sink) {
	mu.Lock()
	defer mu.Unlock()
	sink = s
}

// Trip records an internal invariant break at the caller's (file, line).
// The first call from a given call site reports msg through the sink;
// later calls from the same site are deduplicated and produce no output.
func Trip(format string, args ...any) {
	_, file, line, ok := runtime.Caller(1)
	key := "unknown:0"
	if ok {
		key = fmt.Sprintf("%s:%d", file, line)
	}

	mu.Lock()
	already := tripped[key]
	tripped[key] = true
	s := sink
	mu.Unlock()

	if already || s == nil {
		return
	}

	s(fmt.Sprintf("fuse %s: %s", key, fmt.Sprintf(format, args...)))
}

// Reset clears all recorded trips. Intended for tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	tripped = map[string]bool{}
}
