package termio

import "testing"

func TestNonBlockingLengthStopsAtESC(t *testing.T) {
	buf := []byte("hi\x1b[A")
	if got := NonBlockingLength(buf); got != 2 {
		t.Fatalf("NonBlockingLength = %d, want 2", got)
	}
}

func TestBlockingLengthDSRReply(t *testing.T) {
	buf := []byte("\x1b[24;80R")
	if got := BlockingLength(buf); got != len(buf) {
		t.Fatalf("BlockingLength = %d, want %d", got, len(buf))
	}
}

func TestBlockingLengthArrowKey(t *testing.T) {
	buf := []byte("\x1b[A")
	if got := BlockingLength(buf); got != len(buf) {
		t.Fatalf("BlockingLength(arrow) = %d, want %d", got, len(buf))
	}
}

func TestBlockingLengthTildeKey(t *testing.T) {
	buf := []byte("\x1b[5~")
	if got := BlockingLength(buf); got != len(buf) {
		t.Fatalf("BlockingLength(~) = %d, want %d", got, len(buf))
	}
}

func TestBlockingLengthIncomplete(t *testing.T) {
	buf := []byte("\x1b[24;8")
	if got := BlockingLength(buf); got != 0 {
		t.Fatalf("BlockingLength(incomplete) = %d, want 0", got)
	}
}

func TestBlockingLengthInvalidSkipsOneByte(t *testing.T) {
	buf := []byte("\x1bXrest")
	if got := BlockingLength(buf); got != 1 {
		t.Fatalf("BlockingLength(invalid) = %d, want 1", got)
	}
}

func TestParseDSRReply(t *testing.T) {
	rows, cols, ok := parseDSRReply([]byte("\x1b[24;80R"))
	if !ok || rows != 24 || cols != 80 {
		t.Fatalf("parseDSRReply = (%d,%d,%v), want (24,80,true)", rows, cols, ok)
	}
}

func TestParseDSRReplyMalformed(t *testing.T) {
	if _, _, ok := parseDSRReply([]byte("\x1b[notanumberR")); ok {
		t.Fatalf("expected malformed DSR reply to fail parsing")
	}
}
