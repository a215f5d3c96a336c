// Package mqtt publishes controller status events to MQTT with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sweeney/ir-relay/internal/control"
)

// Topic is the MQTT topic for controller events.
const Topic = "home/ir-relay/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/ir-relay/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a controller event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event control.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Nop is a Publisher used when no broker is configured. It drops
// everything and never reports a connection.
type Nop struct{}

func (Nop) Publish(control.Event) error     { return nil }
func (Nop) PublishSystem(SystemEvent) error { return nil }
func (Nop) Close() error                    { return nil }
func (Nop) IsConnected() bool               { return false }

// NewReporter adapts a Publisher to control.Reporter. Publish failures are
// logged and otherwise ignored.
func NewReporter(pub Publisher, logger *slog.Logger) control.Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return control.ReporterFunc(func(e control.Event) {
		if err := pub.Publish(e); err != nil {
			logger.Warn("mqtt publish failed", "event", string(e.Type), "error", err)
		}
	})
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "MQTT_DISCONNECT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Relay RelayPayload `json:"relay"`
}

// RelayPayload contains the controller event details. Fields that do not
// apply to the event type are omitted.
type RelayPayload struct {
	Timestamp string   `json:"timestamp"`
	Event     string   `json:"event"`
	Message   string   `json:"message"`
	Channel   *int     `json:"channel,omitempty"`
	State     string   `json:"state,omitempty"`
	Code      string   `json:"code,omitempty"`
	Slot      *int     `json:"slot,omitempty"`
	Codes     []string `json:"codes,omitempty"`
	States    []string `json:"states,omitempty"`
}

// FormatPayload creates the JSON payload for a controller event.
func FormatPayload(event control.Event) ([]byte, error) {
	p := RelayPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Message:   event.String(),
	}

	switch event.Type {
	case control.EventRelay:
		ch := event.Channel
		p.Channel = &ch
		p.State = stateString(event.On)
	case control.EventLearned:
		slot := event.Slot
		p.Slot = &slot
		p.Code = control.FormatCode(event.Code)
	case control.EventReceived, control.EventDuplicate, control.EventIgnored:
		p.Code = control.FormatCode(event.Code)
	case control.EventStartup, control.EventConfigDone:
		for _, c := range event.Codes {
			p.Codes = append(p.Codes, control.FormatCode(c))
		}
		for _, on := range event.States {
			p.States = append(p.States, stateString(on))
		}
	}

	return json.Marshal(Payload{Relay: p})
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
