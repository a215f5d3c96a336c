// Package store mirrors relay states and learned IR codes onto a
// byte-addressed durable device (EEPROM or an image file).
//
// Layout, kept bit-exact for existing deployments:
//
//	0 .. 4N-1        learned codes, N little-endian uint32 values in slot order
//	StateBase + i    relay i state, 0 = off, nonzero = on
//
// The store holds no state of its own and performs no validation of what
// it reads back.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// StateBase is the byte offset of the relay state flags.
const StateBase = 16

// CodeSize is the width in bytes of one stored code.
const CodeSize = 4

var (
	// ErrIndex is returned for a channel index outside [0, N).
	ErrIndex = errors.New("store: channel index out of range")
	// ErrLength is returned when a code table does not have N entries.
	ErrLength = errors.New("store: code table length mismatch")
)

// Device is the durable medium the store writes through to.
type Device interface {
	io.ReaderAt
	io.WriterAt
}

// Store reads and writes the persisted tables for n channels.
type Store struct {
	dev Device
	n   int
}

// New creates a Store for n channels on dev.
func New(dev Device, n int) *Store {
	return &Store{dev: dev, n: n}
}

// Channels returns the number of channels the store was created for.
func (s *Store) Channels() int {
	return s.n
}

// LoadStates reads the relay state flags. Any nonzero byte reads as on.
func (s *Store) LoadStates() ([]bool, error) {
	buf := make([]byte, s.n)
	if err := s.readAt(buf, StateBase); err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}
	states := make([]bool, s.n)
	for i, b := range buf {
		states[i] = b != 0
	}
	return states, nil
}

// LoadCodes reads the learned code table as one contiguous block.
func (s *Store) LoadCodes() ([]uint32, error) {
	buf := make([]byte, s.n*CodeSize)
	if err := s.readAt(buf, 0); err != nil {
		return nil, fmt.Errorf("load codes: %w", err)
	}
	codes := make([]uint32, s.n)
	for i := range codes {
		codes[i] = binary.LittleEndian.Uint32(buf[i*CodeSize:])
	}
	return codes, nil
}

// SaveState persists relay i's state. The byte is only written when it
// differs from what is already stored.
func (s *Store) SaveState(i int, on bool) error {
	if i < 0 || i >= s.n {
		return fmt.Errorf("save state %d: %w", i, ErrIndex)
	}
	var want byte
	if on {
		want = 1
	}

	off := int64(StateBase + i)
	cur := make([]byte, 1)
	if err := s.readAt(cur, off); err != nil {
		return fmt.Errorf("save state %d: %w", i, err)
	}
	if cur[0] == want {
		return nil
	}
	if _, err := s.dev.WriteAt([]byte{want}, off); err != nil {
		return fmt.Errorf("save state %d: %w", i, err)
	}
	return nil
}

// SaveCodes writes the full code table in a single write.
func (s *Store) SaveCodes(codes []uint32) error {
	if len(codes) != s.n {
		return fmt.Errorf("save codes: got %d, want %d: %w", len(codes), s.n, ErrLength)
	}
	buf := make([]byte, s.n*CodeSize)
	for i, c := range codes {
		binary.LittleEndian.PutUint32(buf[i*CodeSize:], c)
	}
	if _, err := s.dev.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("save codes: %w", err)
	}
	return nil
}

// readAt fills p from off. A device shorter than the layout reads as zeros.
func (s *Store) readAt(p []byte, off int64) error {
	n, err := s.dev.ReadAt(p, off)
	if errors.Is(err, io.EOF) {
		clear(p[n:])
		return nil
	}
	return err
}
