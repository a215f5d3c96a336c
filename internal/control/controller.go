package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/sweeney/ir-relay/internal/gpio"
	"github.com/sweeney/ir-relay/internal/ir"
)

// ErrChannel is returned for a channel index outside [0, Channels).
var ErrChannel = errors.New("control: channel index out of range")

// IndicatorReady is the indicator level shown while in normal mode.
const IndicatorReady = false

// errorBlinks is the number of flashes in the duplicate code cue.
const errorBlinks = 3

// Store is the durable mirror of relay states and the code table.
type Store interface {
	LoadStates() ([]bool, error)
	LoadCodes() ([]uint32, error)
	SaveState(i int, on bool) error
	SaveCodes(codes []uint32) error
}

// Config holds the collaborators of a Controller.
type Config struct {
	Relays    []gpio.Output // one per channel, active low
	Trigger   gpio.Input    // config button, active low
	Indicator gpio.Output
	Decoder   ir.Decoder
	Store     Store
	Reporter  Reporter
	Sleeper   Sleeper
	Timings   Timings
	Now       func() time.Time
	Logger    *slog.Logger
}

// Controller owns relay states and the learned code table and runs the
// normal/config state machine. It is not safe for concurrent use.
type Controller struct {
	relays    []gpio.Output
	trigger   gpio.Input
	indicator gpio.Output
	decoder   ir.Decoder
	store     Store
	reporter  Reporter
	sleeper   Sleeper
	timings   Timings
	now       func() time.Time
	log       *slog.Logger

	mode        Mode
	states      []bool
	codes       []uint32
	indicatorOn bool
}

// New creates a Controller. Call Init before Step.
func New(cfg Config) (*Controller, error) {
	if len(cfg.Relays) != Channels {
		return nil, fmt.Errorf("control: got %d relay lines, want %d", len(cfg.Relays), Channels)
	}
	for i, r := range cfg.Relays {
		if r == nil {
			return nil, fmt.Errorf("control: relay line %d is nil", i)
		}
	}
	if cfg.Trigger == nil || cfg.Indicator == nil || cfg.Decoder == nil || cfg.Store == nil {
		return nil, errors.New("control: trigger, indicator, decoder and store are required")
	}
	if cfg.Reporter == nil {
		cfg.Reporter = Reporters(nil)
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = TimerSleeper{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Controller{
		relays:    cfg.Relays,
		trigger:   cfg.Trigger,
		indicator: cfg.Indicator,
		decoder:   cfg.Decoder,
		store:     cfg.Store,
		reporter:  cfg.Reporter,
		sleeper:   cfg.Sleeper,
		timings:   cfg.Timings,
		now:       cfg.Now,
		log:       cfg.Logger,
		mode:      ModeNormal,
		states:    make([]bool, Channels),
		codes:     make([]uint32, Channels),
	}, nil
}

// Init hydrates relay states and codes from the store and drives the
// outputs to match. Stored codes are taken as-is, duplicates included.
func (c *Controller) Init() error {
	states, err := c.store.LoadStates()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	codes, err := c.store.LoadCodes()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	copy(c.states, states)
	copy(c.codes, codes)

	for i, on := range c.states {
		if err := c.relays[i].Set(!on); err != nil {
			return fmt.Errorf("init relay %d: %w", i, err)
		}
	}
	c.setIndicator(IndicatorReady)
	c.decoder.Resume()

	c.report(Event{Type: EventStartup, States: c.States(), Codes: c.Codes()})
	return nil
}

// Step runs one normal mode iteration: check the trigger button, then the
// decoder. Entering config mode blocks until every slot has been learned.
// Errors are reported but never leave the controller in a stuck state;
// callers log them and keep stepping.
func (c *Controller) Step(ctx context.Context) error {
	var errs []error

	pressed, err := c.triggerPressed(ctx)
	if err != nil {
		errs = append(errs, err)
	} else if pressed {
		if err := c.Configure(ctx); err != nil {
			return errors.Join(append(errs, err)...)
		}
	}

	if code, ok := c.decoder.Poll(); ok {
		c.report(Event{Type: EventReceived, Code: code})
		c.decoder.Resume()

		if code == TriggerCode {
			if err := c.Configure(ctx); err != nil {
				errs = append(errs, err)
			}
		} else if i := c.lookup(code); i >= 0 {
			if err := c.Toggle(i); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// triggerPressed reads the button, and if it is held low re-reads it after
// the debounce interval.
func (c *Controller) triggerPressed(ctx context.Context) (bool, error) {
	high, err := c.trigger.Level()
	if err != nil {
		return false, fmt.Errorf("read trigger: %w", err)
	}
	if high {
		return false, nil
	}
	if err := c.sleeper.Sleep(ctx, c.timings.Debounce); err != nil {
		return false, err
	}
	high, err = c.trigger.Level()
	if err != nil {
		return false, fmt.Errorf("read trigger: %w", err)
	}
	if high {
		c.log.Debug("trigger bounce ignored")
	}
	return !high, nil
}

// lookup returns the first slot holding code, or -1. Zero marks an
// unprogrammed slot and never matches.
func (c *Controller) lookup(code uint32) int {
	if code == 0 {
		return -1
	}
	for i, stored := range c.codes {
		if stored == code {
			return i
		}
	}
	return -1
}

// Toggle flips relay i, drives its line and persists the new state.
func (c *Controller) Toggle(i int) error {
	if i < 0 || i >= Channels {
		return fmt.Errorf("toggle %d: %w", i, ErrChannel)
	}
	on := !c.states[i]
	if err := c.relays[i].Set(!on); err != nil {
		return fmt.Errorf("toggle relay %d: %w", i, err)
	}
	c.states[i] = on

	err := c.store.SaveState(i, on)
	c.report(Event{Type: EventRelay, Channel: i, On: on})
	if err != nil {
		return fmt.Errorf("toggle relay %d: %w", i, err)
	}
	return nil
}

// Configure runs config mode until Channels distinct codes have been
// learned, then persists them as the new code table. The button is not
// read while configuring and there is no way out other than completing.
// A cancelled ctx returns early with the controller still configuring.
func (c *Controller) Configure(ctx context.Context) error {
	c.mode = ModeConfiguring
	c.report(Event{Type: EventConfigStart})
	if err := c.flash(ctx, c.timings.EntryCue); err != nil {
		return err
	}

	learned := make([]uint32, Channels)
	filled := 0
	for filled < Channels {
		c.setIndicator(!c.indicatorOn)
		if err := c.sleeper.Sleep(ctx, c.timings.SlowBlink); err != nil {
			return err
		}

		code, ok := c.decoder.Poll()
		if !ok {
			continue
		}

		switch {
		case code == 0 || code == TriggerCode:
			c.report(Event{Type: EventIgnored, Code: code})
		case slices.Contains(learned[:filled], code):
			c.report(Event{Type: EventDuplicate, Code: code})
			for n := 0; n < errorBlinks; n++ {
				if err := c.flash(ctx, c.timings.ErrorBlink); err != nil {
					return err
				}
				if err := c.sleeper.Sleep(ctx, c.timings.ErrorBlink); err != nil {
					return err
				}
			}
		default:
			learned[filled] = code
			c.report(Event{Type: EventLearned, Code: code, Slot: filled})
			if err := c.flash(ctx, c.timings.Confirm); err != nil {
				return err
			}
			filled++
		}
		c.decoder.Resume()
	}

	err := c.store.SaveCodes(learned)
	c.codes = learned
	c.mode = ModeNormal
	c.report(Event{Type: EventConfigDone, Codes: c.Codes()})
	c.setIndicator(IndicatorReady)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// flash drives the indicator on for d, then off.
func (c *Controller) flash(ctx context.Context, d time.Duration) error {
	c.setIndicator(true)
	err := c.sleeper.Sleep(ctx, d)
	c.setIndicator(false)
	return err
}

// setIndicator drives the indicator. Failures are logged only; the LED is
// a cue, not part of the controlled state.
func (c *Controller) setIndicator(on bool) {
	c.indicatorOn = on
	if err := c.indicator.Set(on); err != nil {
		c.log.Warn("indicator write failed", "error", err)
	}
}

func (c *Controller) report(e Event) {
	e.Timestamp = c.now()
	c.log.Info(e.String(), "event", string(e.Type))
	c.reporter.Report(e)
}

// Mode returns the current run mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// States returns a copy of the relay states.
func (c *Controller) States() []bool {
	return append([]bool(nil), c.states...)
}

// Codes returns a copy of the learned code table.
func (c *Controller) Codes() []uint32 {
	return append([]uint32(nil), c.codes...)
}
