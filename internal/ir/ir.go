// Package ir delivers decoded infrared remote codes.
// The real implementation reads scancodes from the kernel LIRC device.
// The fake implementation allows testing without a receiver.
package ir

import (
	"encoding/binary"
	"errors"
)

// Decoder hands out one decoded code at a time.
type Decoder interface {
	// Poll returns a newly decoded code if one is waiting. It never blocks.
	Poll() (uint32, bool)

	// Resume re-arms the decoder for the next code.
	Resume()
}

// DefaultDevice is the LIRC character device of the first receiver.
const DefaultDevice = "/dev/lirc0"

// Kernel rc_proto values (include/uapi/linux/lirc.h).
const (
	protoNEC  = 9
	protoNECX = 10
)

const (
	scancodeSize       = 24
	scancodeFlagRepeat = 0x2
)

// Scancode is one decoded frame as reported by the kernel.
type Scancode struct {
	Timestamp uint64
	Flags     uint16
	Proto     uint16
	Keycode   uint32
	Scancode  uint64
}

// Repeat reports whether the frame is a held-button repeat.
func (s Scancode) Repeat() bool {
	return s.Flags&scancodeFlagRepeat != 0
}

// Code returns the 32-bit value stored in learned code tables.
//
// NEC frames are reported by the kernel as address/command scancodes. The
// tables hold the full frame as received LSB first, so the address and
// command are expanded back with their inverted check bytes:
// address 0x80, command 0x1A becomes 0xE51A7F80.
func (s Scancode) Code() uint32 {
	switch s.Proto {
	case protoNEC:
		addr := uint32(s.Scancode>>8) & 0xFF
		cmd := uint32(s.Scancode) & 0xFF
		return (^cmd&0xFF)<<24 | cmd<<16 | (^addr&0xFF)<<8 | addr
	case protoNECX:
		lo := uint32(s.Scancode>>16) & 0xFF
		hi := uint32(s.Scancode>>8) & 0xFF
		cmd := uint32(s.Scancode) & 0xFF
		return (^cmd&0xFF)<<24 | cmd<<16 | hi<<8 | lo
	default:
		return uint32(s.Scancode)
	}
}

var errShortScancode = errors.New("ir: short scancode record")

// ParseScancode decodes one struct lirc_scancode record.
func ParseScancode(b []byte) (Scancode, error) {
	if len(b) < scancodeSize {
		return Scancode{}, errShortScancode
	}
	e := binary.NativeEndian
	return Scancode{
		Timestamp: e.Uint64(b[0:]),
		Flags:     e.Uint16(b[8:]),
		Proto:     e.Uint16(b[10:]),
		Keycode:   e.Uint32(b[12:]),
		Scancode:  e.Uint64(b[16:]),
	}, nil
}
