package store

import "io"

// MemDevice is an in-memory Device for tests. It records how many writes
// reached it so wear-minimizing behaviour can be asserted.
type MemDevice struct {
	// Data is the device contents. It grows on writes past the end.
	Data []byte

	// Writes counts WriteAt calls that reached the device.
	Writes int

	// WriteError, if set, is returned by WriteAt without modifying Data.
	WriteError error

	// ReadError, if set, is returned by ReadAt.
	ReadError error
}

// NewMemDevice creates a zero-filled MemDevice of the given size.
func NewMemDevice(size int) *MemDevice {
	return &MemDevice{Data: make([]byte, size)}
}

// ReadAt implements io.ReaderAt.
func (m *MemDevice) ReadAt(p []byte, off int64) (int, error) {
	if m.ReadError != nil {
		return 0, m.ReadError
	}
	if off >= int64(len(m.Data)) {
		return 0, io.EOF
	}
	n := copy(p, m.Data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt.
func (m *MemDevice) WriteAt(p []byte, off int64) (int, error) {
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	m.Writes++
	if end := int(off) + len(p); end > len(m.Data) {
		grown := make([]byte, end)
		copy(grown, m.Data)
		m.Data = grown
	}
	return copy(m.Data[off:], p), nil
}
