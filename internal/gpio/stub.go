//go:build !linux

package gpio

import "errors"

// RealLines is not available on non-Linux platforms.
type RealLines struct{}

// NewRealLines returns an error on non-Linux platforms.
func NewRealLines(chipName string, trigger, indicator int, relays []int) (*RealLines, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Trigger is not implemented on non-Linux platforms.
func (r *RealLines) Trigger() Input { return nil }

// Indicator is not implemented on non-Linux platforms.
func (r *RealLines) Indicator() Output { return nil }

// Relays is not implemented on non-Linux platforms.
func (r *RealLines) Relays() []Output { return nil }

// Close is not implemented on non-Linux platforms.
func (r *RealLines) Close() error {
	return nil
}
