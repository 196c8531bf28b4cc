package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestBufferedWhileRawThenDrained(t *testing.T) {
	var out bytes.Buffer
	SetOutput(&out)
	defer SetOutput(nil)

	prevDebug := DebugEnabled
	DebugEnabled = true
	defer func() { DebugEnabled = prevDebug }()

	EnterRaw()
	Debug("probe %d", 1)
	if out.Len() != 0 {
		t.Fatalf("expected nothing written to dest while raw, got %q", out.String())
	}

	drained := LeaveRaw()
	if !strings.Contains(drained, "probe 1") {
		t.Fatalf("LeaveRaw() = %q, want it to contain buffered message", drained)
	}
	if !strings.Contains(out.String(), "probe 1") {
		t.Fatalf("expected LeaveRaw to flush the buffered message to dest, got %q", out.String())
	}
}

func TestDebugSilentWhenDisabled(t *testing.T) {
	var out bytes.Buffer
	SetOutput(&out)
	defer SetOutput(nil)

	prevDebug := DebugEnabled
	DebugEnabled = false
	defer func() { DebugEnabled = prevDebug }()

	Debug("should not appear")
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestErrorAlwaysWrites(t *testing.T) {
	var out bytes.Buffer
	SetOutput(&out)
	defer SetOutput(nil)

	Error("fatal: %s", "broken")
	if !strings.Contains(out.String(), "fatal: broken") {
		t.Fatalf("Error output = %q, want it to contain the message", out.String())
	}
}
