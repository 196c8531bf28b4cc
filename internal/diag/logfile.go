package diag

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// OpenLogFile opens path for append (creating it if necessary) and
// makes it the drain target for LeaveRaw's output, per the -log flag
// (SPEC_FULL.md §10 "CLI / flags").
func OpenLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("diag: open log file: %w", err)
	}
	SetOutput(f)
	return f, nil
}

// LogFileWatcher reopens the diagnostic log file if it is removed or
// renamed out from under the process (external log rotation) during a
// long session; truncation in place does not trigger a reopen. Grounded on the teacher's ConnectionTracker.watchLoop
// (cmd/vision3/main.go), which debounce-reacts to fsnotify events on a
// watched file's directory; this repurposes that same fsnotify.Watcher
// plumbing away from BBS IP-list hot-reload (SPEC_FULL.md §11 names the
// drop of that original use) toward the diagnostic sink's own file
// handle, which is the one concern this repository actually needs
// fsnotify for.
type LogFileWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
	current *os.File
}

// WatchLogFile starts watching path's directory and reopens path
// whenever it is removed or renamed out from under the open handle.
// current is the file handle OpenLogFile returned for path; the
// watcher takes ownership of closing it on reopen or Stop.
// Call Stop to release the watcher.
func WatchLogFile(path string, current *os.File) (*LogFileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("diag: create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("diag: watch %s: %w", dir, err)
	}

	lw := &LogFileWatcher{path: path, watcher: w, done: make(chan struct{}), current: current}
	go lw.run()
	return lw, nil
}

func (lw *LogFileWatcher) run() {
	for {
		select {
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			if event.Name != lw.path {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if f, err := OpenLogFile(lw.path); err == nil {
				lw.current.Close()
				lw.current = f
			}
		case _, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
		case <-lw.done:
			return
		}
	}
}

// Stop releases the underlying fsnotify watcher and the currently open
// log file handle.
func (lw *LogFileWatcher) Stop() {
	close(lw.done)
	lw.watcher.Close()
	lw.current.Close()
}
