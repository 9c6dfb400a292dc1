// Package mqtt publishes thermostat reports and lifecycle events to an MQTT
// broker, with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/thermostat/internal/report"
)

// Default topics.
const (
	// TopicReport carries the raw <AA,SS,H,EEEE> report lines.
	TopicReport = "home/thermostat/report"

	// TopicSystem carries lifecycle events (startup, heartbeat, shutdown).
	TopicSystem = "home/thermostat/system"
)

// Publisher publishes to MQTT. As a report.Sink, Emit is fire-and-forget:
// it never waits for the broker.
type Publisher interface {
	report.Sink

	// PublishSystem sends a system lifecycle event to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is one lifecycle message for the system topic.
type SystemEvent struct {
	Timestamp time.Time
	Event     string // STARTUP, HEARTBEAT, SHUTDOWN, OFFLINE
	Reason    string // signal name on SHUTDOWN

	// RawPayload, when set, is published as-is. The daemon fills it with a
	// status snapshot; without it a minimal system payload is built.
	RawPayload []byte
	Retained   bool
}

// systemPayload is the minimal payload used for the last will and for
// events published without a status snapshot.
type systemPayload struct {
	System struct {
		Timestamp string `json:"timestamp"`
		Event     string `json:"event"`
		Reason    string `json:"reason,omitempty"`
	} `json:"system"`
}

// FormatSystemPayload returns the bytes to publish for event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	var p systemPayload
	p.System.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	p.System.Event = event.Event
	p.System.Reason = event.Reason
	return json.Marshal(p)
}
