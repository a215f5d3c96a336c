// Package gpio provides digital input and output lines with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Input reads the level of a digital input line.
type Input interface {
	// Level returns the raw line level, true = high.
	Level() (bool, error)
}

// Output drives a digital output line.
type Output interface {
	// Set drives the line high (true) or low (false).
	Set(high bool) error
}

// Default pin definitions (BCM numbering)
const (
	DefaultPinTrigger   = 24 // config push button, active low
	DefaultPinIndicator = 25 // status LED
)

// DefaultRelayPins are the relay board inputs, one per channel, active low.
var DefaultRelayPins = []int{17, 27, 22, 23}

// DefaultChip is the GPIO character device the lines live on.
const DefaultChip = "gpiochip0"
