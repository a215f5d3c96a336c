package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/ir-relay/internal/control"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Mode          string       `json:"mode"`
	Ready         bool         `json:"ready"`
	Relays        []RelayJSON  `json:"relays"`
	Filled        int          `json:"config_filled,omitempty"`
	LastEvent     string       `json:"last_event,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// RelayJSON is one channel: its relay state and learned code.
type RelayJSON struct {
	Channel int    `json:"channel"`
	State   string `json:"state"`
	Code    string `json:"code"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Received       int `json:"received"`
	Toggles        int `json:"toggles"`
	Learned        int `json:"learned"`
	Duplicates     int `json:"duplicates"`
	ConfigSessions int `json:"config_sessions"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs       int64  `json:"poll_ms"`
	DebounceMs   int64  `json:"debounce_ms"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
	Chip         string `json:"chip"`
	RelayPins    []int  `json:"relay_pins"`
	TriggerPin   int    `json:"trigger_pin"`
	IndicatorPin int    `json:"indicator_pin"`
	StorePath    string `json:"store_path"`
}

// Relays pairs relay states with their codes, one entry per channel.
// A channel whose state is not yet known reports UNKNOWN.
func Relays(snap Snapshot) []RelayJSON {
	out := make([]RelayJSON, control.Channels)
	for i := range out {
		out[i] = RelayJSON{Channel: i, State: "UNKNOWN", Code: control.FormatCode(0)}
		if i < len(snap.Relays) {
			out[i].State = "OFF"
			if snap.Relays[i] {
				out[i].State = "ON"
			}
		}
		if i < len(snap.Codes) {
			out[i].Code = control.FormatCode(snap.Codes[i])
		}
	}
	return out
}

func buildInner(snap Snapshot) StatusInner {
	mode := string(snap.Mode)
	if mode == "" {
		mode = "STARTING"
	}

	inner := StatusInner{
		Mode:          mode,
		Ready:         snap.Ready(),
		Relays:        Relays(snap),
		Filled:        snap.Filled,
		LastEvent:     snap.LastEvent,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Received:       snap.Counts.Received,
			Toggles:        snap.Counts.Toggles,
			Learned:        snap.Counts.Learned,
			Duplicates:     snap.Counts.Duplicates,
			ConfigSessions: snap.Counts.ConfigSessions,
		},
		Config: ConfigJSON{
			PollMs:       snap.Config.PollMs,
			DebounceMs:   snap.Config.DebounceMs,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			Chip:         snap.Config.Chip,
			RelayPins:    snap.Config.RelayPins,
			TriggerPin:   snap.Config.TriggerPin,
			IndicatorPin: snap.Config.IndicatorPin,
			StorePath:    snap.Config.StorePath,
		},
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
