// Package config loads daemon settings from IR_RELAY_* environment
// variables, then lets command-line flags override them.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sweeney/ir-relay/internal/control"
)

// Config holds every daemon setting.
type Config struct {
	Chip         string `env:"CHIP" envDefault:"gpiochip0"`
	RelayPins    []int  `env:"RELAY_PINS" envDefault:"17,27,22,23" envSeparator:","`
	TriggerPin   int    `env:"TRIGGER_PIN" envDefault:"24"`
	IndicatorPin int    `env:"INDICATOR_PIN" envDefault:"25"`
	LIRCDevice   string `env:"LIRC_DEVICE" envDefault:"/dev/lirc0"`
	StorePath    string `env:"STORE_PATH" envDefault:"/var/lib/ir-relay/state.bin"`

	Poll       time.Duration `env:"POLL" envDefault:"10ms"`
	Debounce   time.Duration `env:"DEBOUNCE" envDefault:"50ms"`
	SlowBlink  time.Duration `env:"SLOW_BLINK" envDefault:"300ms"`
	Confirm    time.Duration `env:"CONFIRM" envDefault:"100ms"`
	ErrorBlink time.Duration `env:"ERROR_BLINK" envDefault:"100ms"`
	EntryCue   time.Duration `env:"ENTRY_CUE" envDefault:"1s"`
	Heartbeat  time.Duration `env:"HEARTBEAT" envDefault:"15m"`

	Broker   string `env:"BROKER"`
	HTTPAddr string `env:"HTTP" envDefault:":80"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	PrintState bool
}

const envPrefix = "IR_RELAY_"

// Load reads the environment, then parses args as flags on top of it.
// A nil environ reads the process environment.
func Load(args []string, environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{Prefix: envPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("ir-relay", flag.ContinueOnError)
	cfg.register(fs)
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) register(fs *flag.FlagSet) {
	fs.StringVar(&c.Chip, "chip", c.Chip, "GPIO chip name")
	fs.Var((*pinList)(&c.RelayPins), "relay-pins", "Comma separated BCM pins for the relays")
	fs.IntVar(&c.TriggerPin, "pin-trigger", c.TriggerPin, "BCM pin number for the config button")
	fs.IntVar(&c.IndicatorPin, "pin-indicator", c.IndicatorPin, "BCM pin number for the indicator LED")
	fs.StringVar(&c.LIRCDevice, "lirc", c.LIRCDevice, "LIRC receiver device")
	fs.StringVar(&c.StorePath, "store", c.StorePath, "Persistent store: EEPROM sysfs node or image file")
	fs.DurationVar(&c.Poll, "poll", c.Poll, "Control loop interval")
	fs.DurationVar(&c.Debounce, "debounce", c.Debounce, "Button debounce")
	fs.DurationVar(&c.SlowBlink, "slow-blink", c.SlowBlink, "Config mode blink half-period")
	fs.DurationVar(&c.Confirm, "confirm", c.Confirm, "Learned code flash length")
	fs.DurationVar(&c.ErrorBlink, "error-blink", c.ErrorBlink, "Duplicate code flash length")
	fs.DurationVar(&c.EntryCue, "entry-cue", c.EntryCue, "Config mode entry flash length")
	fs.DurationVar(&c.Heartbeat, "heartbeat", c.Heartbeat, "Heartbeat interval (0 to disable)")
	fs.StringVar(&c.Broker, "broker", c.Broker, "MQTT broker address (empty to disable)")
	fs.StringVar(&c.HTTPAddr, "http", c.HTTPAddr, "HTTP status address (empty to disable)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&c.PrintState, "print-state", c.PrintState, "Print persisted state and exit")
}

// Validate checks settings the daemon cannot run without.
func (c Config) Validate() error {
	var errs []error
	if len(c.RelayPins) != control.Channels {
		errs = append(errs, fmt.Errorf("relay pins: got %d, want %d", len(c.RelayPins), control.Channels))
	}
	if c.Poll <= 0 {
		errs = append(errs, errors.New("poll interval must be positive"))
	}
	for name, d := range map[string]time.Duration{
		"debounce":    c.Debounce,
		"slow blink":  c.SlowBlink,
		"confirm":     c.Confirm,
		"error blink": c.ErrorBlink,
		"entry cue":   c.EntryCue,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if c.Heartbeat < 0 {
		errs = append(errs, errors.New("heartbeat must not be negative"))
	}
	if c.StorePath == "" {
		errs = append(errs, errors.New("store path is required"))
	}
	return errors.Join(errs...)
}

// Timings returns the controller timings.
func (c Config) Timings() control.Timings {
	return control.Timings{
		Debounce:   c.Debounce,
		SlowBlink:  c.SlowBlink,
		Confirm:    c.Confirm,
		ErrorBlink: c.ErrorBlink,
		EntryCue:   c.EntryCue,
	}
}

// pinList is a flag.Value for a comma separated list of pins.
type pinList []int

func (p *pinList) String() string {
	if p == nil {
		return ""
	}
	s := make([]string, len(*p))
	for i, v := range *p {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, ",")
}

func (p *pinList) Set(v string) error {
	var pins []int
	for _, f := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return fmt.Errorf("invalid pin %q", f)
		}
		pins = append(pins, n)
	}
	*p = pins
	return nil
}
