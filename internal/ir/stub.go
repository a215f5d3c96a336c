//go:build !linux

package ir

import (
	"errors"
	"log/slog"
)

// LIRCDecoder is not available on non-Linux platforms.
type LIRCDecoder struct{}

// OpenLIRC returns an error on non-Linux platforms.
func OpenLIRC(path string, logger *slog.Logger) (*LIRCDecoder, error) {
	return nil, errors.New("ir: lirc not supported on this platform (requires Linux)")
}

// Poll never returns a code on non-Linux platforms.
func (d *LIRCDecoder) Poll() (uint32, bool) { return 0, false }

// Resume is a no-op on non-Linux platforms.
func (d *LIRCDecoder) Resume() {}

// Close is a no-op on non-Linux platforms.
func (d *LIRCDecoder) Close() error { return nil }
