//go:build linux

package ir

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// LIRC ioctl request and mode (include/uapi/linux/lirc.h).
const (
	lircSetRecMode   = 0x40046912
	lircModeScancode = 0x8
)

// LIRCDecoder reads decoded scancodes from a kernel LIRC device. Decoding
// of the raw pulse timings is done by the kernel rc-core protocol decoders.
type LIRCDecoder struct {
	f   *os.File
	log *slog.Logger

	mu      sync.Mutex
	armed   bool
	pending *uint32
	done    chan struct{}
}

// OpenLIRC opens the device, switches it to scancode mode and starts reading.
func OpenLIRC(path string, logger *slog.Logger) (*LIRCDecoder, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open lirc device: %w", err)
	}
	// SyscallConn keeps the fd non-blocking so Close can interrupt Read.
	rc, err := f.SyscallConn()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("lirc device: %w", err)
	}
	var ioctlErr error
	if err := rc.Control(func(fd uintptr) {
		ioctlErr = unix.IoctlSetPointerInt(int(fd), lircSetRecMode, lircModeScancode)
	}); err != nil {
		ioctlErr = err
	}
	if ioctlErr != nil {
		f.Close()
		return nil, fmt.Errorf("set scancode mode on %s: %w", path, ioctlErr)
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &LIRCDecoder{
		f:     f,
		log:   logger,
		armed: true,
		done:  make(chan struct{}),
	}
	go d.readLoop()
	return d, nil
}

func (d *LIRCDecoder) readLoop() {
	defer close(d.done)
	buf := make([]byte, scancodeSize*8)
	for {
		n, err := d.f.Read(buf)
		if err != nil {
			if !errors.Is(err, os.ErrClosed) {
				d.log.Error("lirc read failed", "error", err)
			}
			return
		}
		for off := 0; off+scancodeSize <= n; off += scancodeSize {
			sc, err := ParseScancode(buf[off : off+scancodeSize])
			if err != nil || sc.Repeat() {
				continue
			}
			d.deliver(sc.Code())
		}
	}
}

// deliver holds code unless one is already waiting or the decoder has
// not been resumed since the last Poll.
func (d *LIRCDecoder) deliver(code uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.armed || d.pending != nil {
		d.log.Debug("lirc code dropped", "code", fmt.Sprintf("0x%08X", code))
		return
	}
	d.pending = &code
}

// Poll returns the waiting code, if any.
func (d *LIRCDecoder) Poll() (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return 0, false
	}
	c := *d.pending
	d.pending = nil
	d.armed = false
	return c, true
}

// Resume re-arms the decoder for the next code.
func (d *LIRCDecoder) Resume() {
	d.mu.Lock()
	d.armed = true
	d.mu.Unlock()
}

// Close stops reading and closes the device.
func (d *LIRCDecoder) Close() error {
	err := d.f.Close()
	<-d.done
	return err
}
