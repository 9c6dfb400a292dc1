package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/thermostat/internal/control"
	"github.com/sweeney/thermostat/internal/gpio"
	"github.com/sweeney/thermostat/internal/mqtt"
	"github.com/sweeney/thermostat/internal/report"
	"github.com/sweeney/thermostat/internal/sched"
	"github.com/sweeney/thermostat/internal/sensor"
	"github.com/sweeney/thermostat/internal/status"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfoAllSet(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}
	want := status.NetworkInfo{
		Type:       "wifi",
		IP:         "192.168.1.100",
		Status:     "connected",
		Gateway:    "192.168.1.1",
		WifiStatus: "connected",
		SSID:       "MyNetwork",
	}
	if *info != want {
		t.Errorf("got %+v, want %+v", *info, want)
	}
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil, got %+v", info)
	}
}

func TestOverride(t *testing.T) {
	tests := []struct {
		cur, flag, want string
	}{
		{"localhost:1883", "", "localhost:1883"},
		{"localhost:1883", "off", ""},
		{"localhost:1883", "broker:1883", "broker:1883"},
		{"", "broker:1883", "broker:1883"},
	}
	for _, tt := range tests {
		if got := override(tt.cur, tt.flag); got != tt.want {
			t.Errorf("override(%q, %q) = %q, want %q", tt.cur, tt.flag, got, tt.want)
		}
	}
}

func TestDetectSensorConfigured(t *testing.T) {
	bus := sensor.NewFakeBus()
	sink := report.NewFakeSink()

	c, found := detectSensor(bus, 0x41, sink)
	if !found || c.ID != "006" || c.Register != 0x01 {
		t.Errorf("got %+v found=%v, want TMP006 on register 1", c, found)
	}
	if len(bus.Writes) != 0 {
		t.Errorf("configured address should skip probing, got writes %v", bus.Writes)
	}
}

func TestDetectSensorProbed(t *testing.T) {
	bus := sensor.NewFakeBus()
	bus.Set(0x49, 0x0B, 0x00)
	sink := report.NewFakeSink()

	c, found := detectSensor(bus, 0, sink)
	if !found || c.Addr != 0x49 || c.ID != "116" {
		t.Errorf("got %+v found=%v, want TMP116 at 0x49", c, found)
	}
}

func TestDetectSensorNotFoundFallsBack(t *testing.T) {
	bus := sensor.NewFakeBus()
	sink := report.NewFakeSink()

	c, found := detectSensor(bus, 0, sink)
	if found {
		t.Error("expected not found")
	}
	if c != sensor.Candidates[0] {
		t.Errorf("got %+v, want first candidate %+v", c, sensor.Candidates[0])
	}
}

// --- runLoop tests ---

type loopFixture struct {
	bus      *sensor.FakeBus
	heater   *gpio.FakeActuator
	console  *report.FakeSink
	pub      *mqtt.FakePublisher
	ctrl     *control.Controller
	sched    *sched.Scheduler
	tracker  *status.Tracker
	setPoint int16
}

// newLoopFixture builds a controller reading 22°C from a TMP11X at 0x48.
func newLoopFixture(t *testing.T, setPoint int16) *loopFixture {
	t.Helper()
	f := &loopFixture{
		bus:      sensor.NewFakeBus(),
		heater:   gpio.NewFakeActuator(),
		console:  report.NewFakeSink(),
		pub:      mqtt.NewFakePublisher(),
		setPoint: setPoint,
	}
	f.bus.Set(0x48, 0x0B, 0x00)

	dev := sensor.NewDevice(f.bus, 0x48)
	f.ctrl = control.New(control.Config{SetPoint: setPoint}, dev, f.heater, report.Tee{f.console, f.pub})

	var err error
	f.sched, err = sched.New(100*time.Millisecond, f.ctrl.Tasks(control.DefaultPeriods())...)
	if err != nil {
		t.Fatalf("sched.New: %v", err)
	}
	f.tracker = status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{})
	return f
}

// runRunLoop drives runLoop for nTicks then delivers signal.
func runRunLoop(t *testing.T, f *loopFixture, publisher mqtt.Publisher, nTicks int, signal os.Signal) error {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(f.sched, f.ctrl, publisher, f.pub, f.tracker, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	return <-errCh
}

func TestRunLoopReportsAndTracks(t *testing.T) {
	f := newLoopFixture(t, 20)

	// Startup cycle plus 20 ticks: heat fires at cycles 0, 10 and 20.
	if err := runRunLoop(t, f, f.pub, 20, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	want := []string{"<22,20,0,0001>", "<22,20,0,0002>"}
	lines := f.console.Lines()
	if len(lines) != len(want) {
		t.Fatalf("console: got %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
	if len(f.pub.Lines) != len(want) {
		t.Errorf("mqtt report lines: got %v, want %v", f.pub.Lines, want)
	}
	if f.heater.On() {
		t.Error("heater should be off when ambient is above the set-point")
	}

	snap := f.tracker.Snapshot()
	if snap.Cycles != 21 {
		t.Errorf("tracked cycles: got %d, want 21", snap.Cycles)
	}
	if snap.Control.Ambient != 22 || snap.Control.Seconds != 3 {
		t.Errorf("tracked control: got %+v", snap.Control)
	}
}

func TestRunLoopHeatsBelowSetPoint(t *testing.T) {
	f := newLoopFixture(t, 25)

	if err := runRunLoop(t, f, f.pub, 10, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if !f.heater.On() {
		t.Error("heater should be on when ambient is below the set-point")
	}
	lines := f.console.Lines()
	if len(lines) != 1 || lines[0] != "<22,25,1,0001>" {
		t.Errorf("console: got %v, want [<22,25,1,0001>]", lines)
	}
}

func TestRunLoopButtonIntent(t *testing.T) {
	f := newLoopFixture(t, 20)
	buttons := gpio.NewFakeButtons(
		func() { f.ctrl.Mailbox().Post(control.IntentIncrease) },
		func() { f.ctrl.Mailbox().Post(control.IntentDecrease) },
	)
	buttons.PressUp()

	if err := runRunLoop(t, f, f.pub, 10, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if got := f.tracker.Snapshot().Control.SetPoint; got != 21 {
		t.Errorf("set-point: got %d, want 21", got)
	}
	if got := f.ctrl.Mailbox().Peek(); got != control.IntentNone {
		t.Errorf("mailbox: got %v, want None", got)
	}
}

func TestRunLoopSensorFailure(t *testing.T) {
	f := newLoopFixture(t, 20)
	f.bus.SetReadError(errors.New("bus stuck"))

	if err := runRunLoop(t, f, f.pub, 10, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var errLines int
	for _, l := range f.console.Lines() {
		if strings.HasPrefix(l, "Error reading temperature sensor") {
			errLines++
		}
	}
	// Temperature fires at cycles 0, 5 and 10; the startup firing only enters Read.
	if errLines != 2 {
		t.Errorf("error lines: got %d, want 2 (%v)", errLines, f.console.Lines())
	}
	snap := f.tracker.Snapshot()
	if snap.Control.SensorErrors != 2 {
		t.Errorf("sensor errors: got %d, want 2", snap.Control.SensorErrors)
	}
	if snap.Control.Ambient != 0 {
		t.Errorf("ambient should stay at its initial value, got %d", snap.Control.Ambient)
	}
}

func TestRunLoopShutdownSIGTERM(t *testing.T) {
	f := newLoopFixture(t, 20)

	if err := runRunLoop(t, f, f.pub, 0, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(f.pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(f.pub.SystemEvents))
	}
	ev := f.pub.SystemEvents[0]
	if ev.Event != "SHUTDOWN" || ev.Reason != "SIGTERM" {
		t.Errorf("got %s/%s, want SHUTDOWN/SIGTERM", ev.Event, ev.Reason)
	}
	if !ev.Retained {
		t.Error("SHUTDOWN should be retained")
	}

	var payload status.StatusJSON
	if err := json.Unmarshal(f.pub.SystemPayloads[0], &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.Status.Event != "SHUTDOWN" || payload.Status.Reason != "SIGTERM" {
		t.Errorf("payload event: got %s/%s", payload.Status.Event, payload.Status.Reason)
	}
	if payload.Status.Cycles != 1 {
		t.Errorf("payload cycles: got %d, want 1", payload.Status.Cycles)
	}
}

func TestRunLoopShutdownSIGINT(t *testing.T) {
	f := newLoopFixture(t, 20)

	if err := runRunLoop(t, f, f.pub, 3, syscall.SIGINT); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	events := f.pub.Events()
	if len(events) != 1 || events[0] != "SHUTDOWN" {
		t.Fatalf("events: got %v, want [SHUTDOWN]", events)
	}
	if f.pub.SystemEvents[0].Reason != "SIGINT" {
		t.Errorf("reason: got %q, want SIGINT", f.pub.SystemEvents[0].Reason)
	}
}

func TestRunLoopPublishError(t *testing.T) {
	f := newLoopFixture(t, 20)
	f.pub.PublishSystemError = errors.New("broker down")

	if err := runRunLoop(t, f, f.pub, 5, syscall.SIGTERM); err != nil {
		t.Fatalf("publish failure should not fail runLoop: %v", err)
	}
	if len(f.pub.SystemEvents) != 0 {
		t.Errorf("expected no recorded events, got %d", len(f.pub.SystemEvents))
	}
}

func TestRunLoopWithoutPublisher(t *testing.T) {
	f := newLoopFixture(t, 20)

	if err := runRunLoop(t, f, nil, 10, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
	if len(f.console.Lines()) != 1 {
		t.Errorf("console: got %v, want one report", f.console.Lines())
	}
	if len(f.pub.SystemEvents) != 0 {
		t.Error("no lifecycle events expected without a publisher")
	}
}

func TestRunHeartbeat(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	pub.Connected = true
	tracker := status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{})

	tick := make(chan time.Time)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		runHeartbeat(pub, pub, tracker, tick, stop)
		close(done)
	}()

	tick <- time.Time{}
	tick <- time.Time{}
	close(stop)
	<-done

	events := pub.Events()
	if len(events) != 2 || events[0] != "HEARTBEAT" || events[1] != "HEARTBEAT" {
		t.Fatalf("events: got %v, want two HEARTBEATs", events)
	}
	if pub.SystemEvents[0].Retained {
		t.Error("HEARTBEAT should not be retained")
	}
	if !tracker.Snapshot().MQTTConnected {
		t.Error("tracker should record the MQTT connection state")
	}
}

func TestSignalName(t *testing.T) {
	tests := []struct {
		sig  os.Signal
		want string
	}{
		{syscall.SIGINT, "SIGINT"},
		{syscall.SIGTERM, "SIGTERM"},
		{syscall.SIGHUP, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := signalName(tt.sig); got != tt.want {
			t.Errorf("signalName(%v) = %q, want %q", tt.sig, got, tt.want)
		}
	}
}
