package ir

// FakeDecoder is a test double that hands out scripted codes.
type FakeDecoder struct {
	// Codes contains scripted codes. Each successful Poll consumes one.
	Codes []uint32

	// Resumes counts calls to Resume.
	Resumes int

	// Polls counts calls to Poll.
	Polls int

	// Gaps, if set, makes every code appear only on every Gaps-th poll.
	Gaps int

	index int
	held  bool
}

// NewFakeDecoder creates a FakeDecoder with the given codes.
func NewFakeDecoder(codes ...uint32) *FakeDecoder {
	return &FakeDecoder{Codes: codes}
}

// Poll returns the next scripted code. Once a code has been handed out no
// further code is returned until Resume is called.
func (f *FakeDecoder) Poll() (uint32, bool) {
	f.Polls++
	if f.held || f.index >= len(f.Codes) {
		return 0, false
	}
	if f.Gaps > 1 && f.Polls%f.Gaps != 0 {
		return 0, false
	}
	c := f.Codes[f.index]
	f.index++
	f.held = true
	return c, true
}

// Resume re-arms the decoder.
func (f *FakeDecoder) Resume() {
	f.Resumes++
	f.held = false
}

// Push appends codes to the script.
func (f *FakeDecoder) Push(codes ...uint32) {
	f.Codes = append(f.Codes, codes...)
}

// Remaining returns how many scripted codes have not been handed out.
func (f *FakeDecoder) Remaining() int {
	return len(f.Codes) - f.index
}
