package fuse

import (
	"strings"
	"testing"
)

func TestTripReportsOnceThenDedupes(t *testing.T) {
	Reset()
	defer Reset()

	var got []string
	SetSink(func(msg string) { got = append(got, msg) })
	defer SetSink(nil)

	trip := func() { Trip("invariant broke: %d", 1) }

	trip()
	trip()
	trip()

	if len(got) != 1 {
		t.Fatalf("expected exactly one report, got %d: %v", len(got), got)
	}
	if !strings.Contains(got[0], "invariant broke: 1") {
		t.Fatalf("report = %q, want it to contain the formatted message", got[0])
	}
}

func TestTripFromDifferentCallSitesBothReport(t *testing.T) {
	Reset()
	defer Reset()

	var got []string
	SetSink(func(msg string) { got = append(got, msg) })
	defer SetSink(nil)

	Trip("site A")
	Trip("site B")

	if len(got) != 2 {
		t.Fatalf("expected two distinct call sites to both report, got %d: %v", len(got), got)
	}
}

func TestTripWithNilSinkStillDedupes(t *testing.T) {
	Reset()
	defer Reset()
	SetSink(nil)

	// Must not panic with no sink installed.
	Trip("no sink installed")
	Trip("no sink installed")
}
