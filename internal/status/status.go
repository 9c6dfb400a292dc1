// Package status provides a thread-safe status tracker for the thermostat
// daemon. The scheduler goroutine writes it after every cycle; HTTP handlers
// and MQTT lifecycle events read snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/thermostat/internal/control"
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

// SensorInfo describes the detected temperature sensor.
type SensorInfo struct {
	ID    string
	Addr  uint16
	Found bool
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs        int64
	SetPointMs    int64
	TemperatureMs int64
	HeatMs        int64
	HeartbeatMs   int64
	Broker        string
	HTTPAddr      string
	SerialPort    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a copy and may be used after the lock is released.
type Snapshot struct {
	Control       control.Snapshot
	Cycles        uint64
	Sensor        SensorInfo
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
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
			Control:   control.Snapshot{Heat: control.HeatInit},
		},
		now: time.Now,
	}
}

// Update stores the controller state after a scheduler cycle.
func (t *Tracker) Update(c control.Snapshot, cycles uint64) {
	t.mu.Lock()
	t.snap.Control = c
	t.snap.Cycles = cycles
	t.mu.Unlock()
}

// SetSensor records the probe result.
func (t *Tracker) SetSensor(info SensorInfo) {
	t.mu.Lock()
	t.snap.Sensor = info
	t.mu.Unlock()
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
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
