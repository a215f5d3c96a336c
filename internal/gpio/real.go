//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealLines holds the requested lines on actual hardware using the Linux
// GPIO character device.
type RealLines struct {
	chip      *gpiocdev.Chip
	trigger   *gpiocdev.Line
	indicator *gpiocdev.Line
	relays    []*gpiocdev.Line
}

// NewRealLines requests the trigger input, indicator output and relay
// outputs on the named chip.
func NewRealLines(chipName string, trigger, indicator int, relays []int) (*RealLines, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	r := &RealLines{chip: chip}

	// The button pulls the line to ground, so bias it high.
	r.trigger, err = chip.RequestLine(trigger, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request trigger pin %d: %w", trigger, err)
	}

	r.indicator, err = chip.RequestLine(indicator, gpiocdev.AsOutput(0))
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request indicator pin %d: %w", indicator, err)
	}

	// Relay boards are active low: request high so nothing energizes
	// before the persisted states are applied.
	for i, pin := range relays {
		l, err := chip.RequestLine(pin, gpiocdev.AsOutput(1))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request relay %d pin %d: %w", i, pin, err)
		}
		r.relays = append(r.relays, l)
	}

	return r, nil
}

// Trigger returns the config button input.
func (r *RealLines) Trigger() Input {
	return inputLine{r.trigger}
}

// Indicator returns the status LED output.
func (r *RealLines) Indicator() Output {
	return outputLine{r.indicator}
}

// Relays returns the relay outputs in channel order.
func (r *RealLines) Relays() []Output {
	out := make([]Output, len(r.relays))
	for i, l := range r.relays {
		out[i] = outputLine{l}
	}
	return out
}

// Close releases GPIO resources.
// Relay lines are released without reconfiguring so the relays keep their
// state across a daemon restart.
func (r *RealLines) Close() error {
	var errs []error

	if r.indicator != nil {
		if err := r.indicator.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear indicator: %w", err))
		}
		if err := r.indicator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close indicator: %w", err))
		}
	}
	if r.trigger != nil {
		if err := r.trigger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trigger: %w", err))
		}
	}
	for i, l := range r.relays {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay %d: %w", i, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	return errors.Join(errs...)
}

type inputLine struct{ l *gpiocdev.Line }

func (in inputLine) Level() (bool, error) {
	v, err := in.l.Value()
	if err != nil {
		return false, fmt.Errorf("read line %d: %w", in.l.Offset(), err)
	}
	return v != 0, nil
}

type outputLine struct{ l *gpiocdev.Line }

func (out outputLine) Set(high bool) error {
	v := 0
	if high {
		v = 1
	}
	if err := out.l.SetValue(v); err != nil {
		return fmt.Errorf("write line %d: %w", out.l.Offset(), err)
	}
	return nil
}
