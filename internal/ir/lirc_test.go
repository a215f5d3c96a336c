//go:build linux

package ir

import (
	"log/slog"
	"testing"
)

func TestLIRCDecoderDeliverPollResume(t *testing.T) {
	d := &LIRCDecoder{armed: true, log: slog.Default()}

	if _, ok := d.Poll(); ok {
		t.Fatal("expected no code before delivery")
	}

	d.deliver(0x11)
	d.deliver(0x22) // dropped: 0x11 is still waiting

	c, ok := d.Poll()
	if !ok || c != 0x11 {
		t.Fatalf("got (%#x, %v), want (0x11, true)", c, ok)
	}

	d.deliver(0x33) // dropped: not resumed yet
	if _, ok := d.Poll(); ok {
		t.Fatal("expected no code before Resume")
	}

	d.Resume()
	d.deliver(0x44)
	c, ok = d.Poll()
	if !ok || c != 0x44 {
		t.Fatalf("after resume: got (%#x, %v), want (0x44, true)", c, ok)
	}
}
