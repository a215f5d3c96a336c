// Package control contains the IR-to-relay control loop: normal dispatch
// of received codes to relay toggles, and the config mode that learns a
// new code table.
//
// The package has no hardware or OS dependencies. Lines, decoder, store,
// clock and sleeping are all injected.
package control

import (
	"fmt"
	"strings"
	"time"
)

// Channels is the number of relay channels and learned code slots.
const Channels = 4

// TriggerCode always enters config mode and can never be learned.
const TriggerCode uint32 = 0xE51A7F80

// Mode is the controller run mode.
type Mode string

const (
	ModeNormal      Mode = "NORMAL"
	ModeConfiguring Mode = "CONFIGURING"
)

// Timings are the delays used for debounce and indicator cues.
type Timings struct {
	Debounce   time.Duration // trigger re-read delay
	SlowBlink  time.Duration // config mode waiting blink half-period
	Confirm    time.Duration // accepted code flash
	ErrorBlink time.Duration // duplicate code flash on/off, three times
	EntryCue   time.Duration // config mode entry pulse
}

// DefaultTimings returns the stock cue timings.
func DefaultTimings() Timings {
	return Timings{
		Debounce:   50 * time.Millisecond,
		SlowBlink:  300 * time.Millisecond,
		Confirm:    100 * time.Millisecond,
		ErrorBlink: 100 * time.Millisecond,
		EntryCue:   1000 * time.Millisecond,
	}
}

// EventType identifies a status report.
type EventType string

const (
	EventStartup     EventType = "STARTUP"
	EventReceived    EventType = "RECEIVED"
	EventRelay       EventType = "RELAY"
	EventConfigStart EventType = "CONFIG_START"
	EventLearned     EventType = "LEARNED"
	EventDuplicate   EventType = "DUPLICATE"
	EventIgnored     EventType = "IGNORED"
	EventConfigDone  EventType = "CONFIG_DONE"
)

// Event is a status report emitted by the controller.
type Event struct {
	Timestamp time.Time
	Type      EventType

	Channel int    // RELAY
	On      bool   // RELAY
	Code    uint32 // RECEIVED, LEARNED, DUPLICATE, IGNORED
	Slot    int    // LEARNED

	States []bool   // STARTUP
	Codes  []uint32 // STARTUP, CONFIG_DONE
}

// String returns the human-readable status line.
func (e Event) String() string {
	switch e.Type {
	case EventStartup:
		return fmt.Sprintf("startup: relays [%s] codes [%s]", formatStates(e.States), formatCodes(e.Codes))
	case EventReceived:
		return fmt.Sprintf("received code %s", FormatCode(e.Code))
	case EventRelay:
		return fmt.Sprintf("relay %d %s", e.Channel, onOff(e.On))
	case EventConfigStart:
		return "entering config mode"
	case EventLearned:
		return fmt.Sprintf("stored code %s in slot %d", FormatCode(e.Code), e.Slot)
	case EventDuplicate:
		return fmt.Sprintf("duplicate code %s rejected", FormatCode(e.Code))
	case EventIgnored:
		return fmt.Sprintf("ignored code %s", FormatCode(e.Code))
	case EventConfigDone:
		return fmt.Sprintf("config complete: codes [%s]", formatCodes(e.Codes))
	}
	return string(e.Type)
}

// FormatCode renders a code as 0xXXXXXXXX.
func FormatCode(c uint32) string {
	return fmt.Sprintf("0x%08X", c)
}

func formatCodes(codes []uint32) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = FormatCode(c)
	}
	return strings.Join(parts, " ")
}

func formatStates(states []bool) string {
	parts := make([]string, len(states))
	for i, on := range states {
		parts[i] = onOff(on)
	}
	return strings.Join(parts, " ")
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// Reporter receives status events. Reporters must not block for long:
// they run on the control loop.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report calls f(e).
func (f ReporterFunc) Report(e Event) { f(e) }

// Reporters fans an event out to every reporter in order.
type Reporters []Reporter

// Report sends e to each reporter.
func (rs Reporters) Report(e Event) {
	for _, r := range rs {
		r.Report(e)
	}
}
