// Package status provides a thread-safe status tracker for the ir-relay daemon.
// It is fed by controller events and read by HTTP handlers and MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/ir-relay/internal/control"
)

// NetworkInfo contains network state as written by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs       int64
	DebounceMs   int64
	HeartbeatMs  int64
	Broker       string
	HTTPAddr     string
	Chip         string
	RelayPins    []int
	TriggerPin   int
	IndicatorPin int
	StorePath    string
}

// Counts tracks controller events since startup.
type Counts struct {
	Received       int
	Toggles        int
	Learned        int
	Duplicates     int
	ConfigSessions int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Mode          control.Mode
	Relays        []bool
	Codes         []uint32
	Filled        int // slots learned so far in the current config session
	Counts        Counts
	LastEvent     string
	LastEventTime time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Ready reports whether the controller has started and is in normal mode.
func (s Snapshot) Ready() bool {
	return s.Mode == control.ModeNormal
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Report applies a controller event. It implements control.Reporter.
func (t *Tracker) Report(e control.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &t.snap
	s.LastEvent = e.String()
	s.LastEventTime = e.Timestamp

	switch e.Type {
	case control.EventStartup:
		s.Mode = control.ModeNormal
		s.Relays = append([]bool(nil), e.States...)
		s.Codes = append([]uint32(nil), e.Codes...)
	case control.EventReceived:
		s.Counts.Received++
	case control.EventRelay:
		if e.Channel >= 0 && e.Channel < len(s.Relays) {
			s.Relays[e.Channel] = e.On
		}
		s.Counts.Toggles++
	case control.EventConfigStart:
		s.Mode = control.ModeConfiguring
		s.Filled = 0
		s.Counts.ConfigSessions++
	case control.EventLearned:
		s.Filled = e.Slot + 1
		s.Counts.Learned++
	case control.EventDuplicate:
		s.Counts.Duplicates++
	case control.EventConfigDone:
		s.Mode = control.ModeNormal
		s.Codes = append([]uint32(nil), e.Codes...)
		s.Filled = 0
	}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Relays = append([]bool(nil), t.snap.Relays...)
	s.Codes = append([]uint32(nil), t.snap.Codes...)
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
