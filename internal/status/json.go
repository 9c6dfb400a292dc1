package status

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Ambient       int16        `json:"ambient"`
	SetPoint      int16        `json:"set_point"`
	Heat          string       `json:"heat"`
	Seconds       int          `json:"seconds"`
	LastReport    string       `json:"last_report,omitempty"`
	Cycles        uint64       `json:"cycles"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Sensor        SensorJSON   `json:"sensor"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// SensorJSON reports the sensor and its failures.
type SensorJSON struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Found     bool   `json:"found"`
	Errors    int    `json:"errors"`
	LastError string `json:"last_error,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
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
	TickMs        int64  `json:"tick_ms"`
	SetPointMs    int64  `json:"setpoint_period_ms"`
	TemperatureMs int64  `json:"temperature_period_ms"`
	HeatMs        int64  `json:"heat_period_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
	HTTPAddr      string `json:"http_addr"`
	SerialPort    string `json:"serial_port,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Control
	inner := StatusInner{
		Ambient:       c.Ambient,
		SetPoint:      c.SetPoint,
		Heat:          c.Heat.String(),
		Seconds:       c.Seconds,
		Cycles:        snap.Cycles,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Sensor: SensorJSON{
			ID:        snap.Sensor.ID,
			Address:   hexAddr(snap.Sensor.Addr),
			Found:     snap.Sensor.Found,
			Errors:    c.SensorErrors,
			LastError: c.LastSensorErr,
		},
		MQTT: MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			TickMs:        snap.Config.TickMs,
			SetPointMs:    snap.Config.SetPointMs,
			TemperatureMs: snap.Config.TemperatureMs,
			HeatMs:        snap.Config.HeatMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			Broker:        snap.Config.Broker,
			HTTPAddr:      snap.Config.HTTPAddr,
			SerialPort:    snap.Config.SerialPort,
		},
	}
	if c.LastRecord != nil {
		inner.LastReport = c.LastRecord.String()
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

func hexAddr(a uint16) string {
	return fmt.Sprintf("0x%02x", a)
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
