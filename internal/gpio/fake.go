package gpio

import "errors"

// FakeInput is a test double that returns scripted line levels.
type FakeInput struct {
	// Levels contains scripted raw levels to return.
	// Each call to Level() consumes the next one.
	Levels []bool

	// index tracks current position in Levels
	index int

	// Reads counts calls to Level.
	Reads int

	// ReadError, if set, will be returned by Level()
	ReadError error
}

// NewFakeInput creates a FakeInput with the given levels.
func NewFakeInput(levels ...bool) *FakeInput {
	return &FakeInput{Levels: levels}
}

// Level returns the next scripted level.
// If levels are exhausted, returns the last level repeatedly.
func (f *FakeInput) Level() (bool, error) {
	f.Reads++
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Levels) == 0 {
		return false, errors.New("no levels configured")
	}

	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}
	return level, nil
}

// Reset rewinds the input to the first scripted level.
func (f *FakeInput) Reset() {
	f.index = 0
	f.Reads = 0
}

// FakeOutput records every level written to it.
type FakeOutput struct {
	// History holds every level passed to Set, in order.
	History []bool

	// SetError, if set, will be returned by Set() and the level is not recorded.
	SetError error
}

// NewFakeOutput creates an empty FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the level.
func (f *FakeOutput) Set(high bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.History = append(f.History, high)
	return nil
}

// Level returns the last level written, false if none.
func (f *FakeOutput) Level() bool {
	if len(f.History) == 0 {
		return false
	}
	return f.History[len(f.History)-1]
}

// Pulses counts low-to-high transitions in the history, starting from low.
func (f *FakeOutput) Pulses() int {
	n := 0
	prev := false
	for _, v := range f.History {
		if v && !prev {
			n++
		}
		prev = v
	}
	return n
}

// Reset clears the recorded history.
func (f *FakeOutput) Reset() {
	f.History = nil
	f.SetError = nil
}
