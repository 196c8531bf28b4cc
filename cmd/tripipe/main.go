// Command tripipe drives the triangular I/O pipeline (spec.md §1) over
// the process's own stdin/stdout: it enters raw mode, probes terminal
// geometry, and runs the session orchestrator's tick loop until
// shutdown or EOF. Only the adapter's interface side is connected to
// stdin/stdout; its TELNET-framed client side is not wired to any
// stream here.
//
// Flag handling follows the teacher's cmd/vision3/main.go convention of
// plain stdlib flag.StringVar/BoolVar plus flag.Parse(), with no CLI
// framework.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/stlalpha/tripipe/internal/amp"
	"github.com/stlalpha/tripipe/internal/diag"
	"github.com/stlalpha/tripipe/internal/fuse"
	"github.com/stlalpha/tripipe/internal/session"
	"github.com/stlalpha/tripipe/internal/termio"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		logPath     string
		paletteFlag string
		debugFlag   bool
	)
	flag.StringVar(&logPath, "log", "", "path to drain buffered diagnostics to once cooked mode is restored (default: stderr)")
	flag.StringVar(&paletteFlag, "palette", "truecolor", "Amp grid palette: 16 or truecolor")
	flag.BoolVar(&debugFlag, "debug", false, "enable verbose diagnostic output")
	flag.Parse()

	diag.DebugEnabled = debugFlag
	fuse.SetSink(func(msg string) { diag.Error("%s", msg) })

	// The Amp palette mode is validated here but handed off to whatever
	// draws screen content, which spec.md §1 treats as an external
	// collaborator out of this repository's scope.
	if _, err := parsePalette(paletteFlag); err != nil {
		fmt.Fprintf(os.Stderr, "tripipe: %v\n", err)
		return 1
	}

	if logPath != "" {
		f, err := diag.OpenLogFile(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tripipe: %v\n", err)
			return 1
		}
		watcher, err := diag.WatchLogFile(logPath, f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tripipe: %v\n", err)
			return 1
		}
		defer watcher.Stop()
	}

	bootID := uuid.NewString()

	signals := session.NewSignalLatch()
	defer signals.Stop()

	fd := int(os.Stdin.Fd())
	adapter := termio.New(termio.NewTTYRawMode(fd), termio.NewTTYGeometryProbe(fd))

	sess := session.New(adapter, signals, os.Stdin, os.Stdout)
	sess.OnReady = func() { writeBootBanner(bootID) }

	diag.EnterRaw()
	runErr := sess.Run()
	diag.LeaveRaw()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "tripipe: abnormal termination: %v\n", runErr)
		return 1
	}
	if adapter.Broken() {
		fmt.Fprintln(os.Stderr, "tripipe: abnormal termination")
		return 1
	}
	fmt.Fprintln(os.Stderr, "tripipe: normal termination")
	return 0
}

// parsePalette maps the -palette flag's value to an amp.Palette.
func parsePalette(s string) (amp.Palette, error) {
	switch s {
	case "16":
		return amp.Palette16, nil
	case "truecolor", "":
		return amp.PaletteTrueColor, nil
	default:
		return 0, fmt.Errorf("unrecognized -palette value %q (want 16 or truecolor)", s)
	}
}

// writeBootBanner emits the OSC window-title escape original_source's
// main.c writes once raw mode is confirmed entered (SPEC_FULL.md §12,
// supplemented feature 1): ESC ] 0 ; <title> BEL.
func writeBootBanner(bootID string) {
	fmt.Fprintf(os.Stdout, "\x1b]0;tripipe %s\x07", bootID)
}
