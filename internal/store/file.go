package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileDevice is a Device backed by a file. The file may be a plain image
// on disk or a kernel-exported EEPROM such as
// /sys/bus/i2c/devices/1-0050/eeprom.
type FileDevice struct {
	f *os.File
}

// OpenFile opens path read-write, creating it (and its directory) if needed.
func OpenFile(path string) (*FileDevice, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return &FileDevice{f: f}, nil
}

// ReadAt implements io.ReaderAt.
func (d *FileDevice) ReadAt(p []byte, off int64) (int, error) {
	return d.f.ReadAt(p, off)
}

// WriteAt writes p at off and syncs so the change survives power loss.
func (d *FileDevice) WriteAt(p []byte, off int64) (int, error) {
	n, err := d.f.WriteAt(p, off)
	if err != nil {
		return n, err
	}
	if err := d.f.Sync(); err != nil {
		return n, fmt.Errorf("sync: %w", err)
	}
	return n, nil
}

// Close closes the underlying file.
func (d *FileDevice) Close() error {
	return d.f.Close()
}
