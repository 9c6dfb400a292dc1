// Command thermostat runs the thermostat control loop: it reads the I2C
// temperature sensor, takes set-point changes from two buttons, drives the
// heater output and reports status over UART, MQTT and HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/thermostat/internal/config"
	"github.com/sweeney/thermostat/internal/control"
	"github.com/sweeney/thermostat/internal/gpio"
	"github.com/sweeney/thermostat/internal/mqtt"
	"github.com/sweeney/thermostat/internal/report"
	"github.com/sweeney/thermostat/internal/sched"
	"github.com/sweeney/thermostat/internal/sensor"
	"github.com/sweeney/thermostat/internal/status"
	"github.com/sweeney/thermostat/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/thermostat.yaml", "Path to YAML config file")
	printState := flag.Bool("print-state", false, "Probe the sensor, print the temperature and exit")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config; \"off\" disables)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config; \"off\" disables)")
	serialPort := flag.String("serial", "", "Report console serial port (overrides config; \"off\" disables)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	cfg.HTTP.Addr = override(cfg.HTTP.Addr, *httpAddr)
	cfg.MQTT.Broker = override(cfg.MQTT.Broker, *broker)
	cfg.Serial.Port = override(cfg.Serial.Port, *serialPort)

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// override applies a flag value on top of a config value.
func override(cur, flagVal string) string {
	switch flagVal {
	case "":
		return cur
	case "off":
		return ""
	}
	return flagVal
}

func run(cfg *config.Config, printState bool) error {
	// Report console: log always, UART when configured.
	sinks := report.Tee{report.LogSink{Prefix: "report: "}}
	if cfg.Serial.Port != "" {
		console, err := report.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return fmt.Errorf("init serial: %w", err)
		}
		defer console.Close()
		sinks = append(sinks, console)
	}

	// Initialize I2C and find the sensor
	bus, err := sensor.OpenBus(cfg.Sensor.Bus)
	if err != nil {
		sinks.Emit("Initializing I2C Driver - Failed")
		return fmt.Errorf("init i2c: %w", err)
	}
	defer bus.Close()
	sinks.Emit("Initializing I2C Driver - Passed")

	part, found := detectSensor(bus, cfg.Sensor.Address, sinks)
	dev := sensor.NewDevice(bus, part.Addr)

	if printState {
		var rx [2]byte
		if err := dev.Tx([]byte{part.Register}, rx[:]); err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		fmt.Printf("Ambient: %d C (TMP%s at 0x%02x)\n", control.DecodeTemperature(rx[0], rx[1]), part.ID, part.Addr)
		return nil
	}

	// Initialize heater output
	heater, err := gpio.NewRealActuator(cfg.GPIO.Chip, cfg.GPIO.PinHeat)
	if err != nil {
		return fmt.Errorf("init heater gpio: %w", err)
	}
	defer heater.Close()

	// Initialize MQTT
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		p, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			ReportTopic: cfg.MQTT.ReportTopic,
			SystemTopic: cfg.MQTT.SystemTopic,
		})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		publisher, mqttStatus = p, p
		sinks = append(sinks, p)
	}

	ctrl := control.New(control.Config{
		SetPoint: cfg.SetPoint(),
		Register: part.Register,
	}, dev, heater, sinks)

	// Initialize buttons. Handlers only post into the mailbox.
	mb := ctrl.Mailbox()
	buttons, err := gpio.NewRealButtons(cfg.GPIO.Chip, cfg.GPIO.PinUp, cfg.GPIO.PinDown, cfg.GPIO.Debounce,
		func() { mb.Post(control.IntentIncrease) },
		func() { mb.Post(control.IntentDecrease) },
	)
	if err != nil {
		return fmt.Errorf("init button gpio: %w", err)
	}
	defer buttons.Close()

	s, err := sched.New(cfg.Timing.Tick, ctrl.Tasks(cfg.Periods())...)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:        cfg.Timing.Tick.Milliseconds(),
		SetPointMs:    cfg.Timing.SetPointPeriod.Milliseconds(),
		TemperatureMs: cfg.Timing.TemperaturePeriod.Milliseconds(),
		HeatMs:        cfg.Timing.HeatPeriod.Milliseconds(),
		HeartbeatMs:   cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:        cfg.MQTT.Broker,
		HTTPAddr:      cfg.HTTP.Addr,
		SerialPort:    cfg.Serial.Port,
	})
	tracker.SetSensor(status.SensorInfo{ID: part.ID, Addr: part.Addr, Found: found})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	if publisher != nil {
		publishStatus(publisher, mqttStatus, tracker, "STARTUP", "")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: tick=%v periods=%v/%v/%v setpoint=%d sensor=TMP%s@0x%02x",
		cfg.Timing.Tick, cfg.Timing.SetPointPeriod, cfg.Timing.TemperaturePeriod, cfg.Timing.HeatPeriod,
		cfg.SetPoint(), part.ID, part.Addr)

	stopHeartbeat := make(chan struct{})
	defer close(stopHeartbeat)
	if publisher != nil && cfg.MQTT.Heartbeat > 0 {
		hb := time.NewTicker(cfg.MQTT.Heartbeat)
		defer hb.Stop()
		go runHeartbeat(publisher, mqttStatus, tracker, hb.C, stopHeartbeat)
	}

	ticker := time.NewTicker(cfg.Timing.Tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(s, ctrl, publisher, mqttStatus, tracker, ticker.C, sigCh)
}

// detectSensor returns the configured sensor, or probes the known parts.
// When nothing answers, the first candidate is used so that reads keep
// failing and being reported each period.
func detectSensor(bus sensor.Bus, addr uint16, out report.Sink) (sensor.Candidate, bool) {
	if addr != 0 {
		c := sensor.Lookup(addr)
		report.Emitf(out, "Using configured sensor address: %x", c.Addr)
		return c, true
	}
	c, ok := sensor.Probe(bus, sensor.Candidates, out)
	if !ok {
		return sensor.Candidates[0], false
	}
	return c, true
}

// runLoop drives the scheduler from tick until a signal arrives, keeping
// the tracker current after every cycle, then publishes SHUTDOWN.
func runLoop(s *sched.Scheduler, ctrl *control.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, tick <-chan time.Time, sig <-chan os.Signal) error {
	s.OnCycle = func(cycles uint64) {
		if tracker != nil {
			tracker.Update(ctrl.Snapshot(), cycles)
		}
	}

	stop := make(chan struct{})
	var received os.Signal
	go func() {
		received = <-sig
		close(stop)
	}()

	s.Run(tick, stop)

	log.Printf("received %v, shutting down", received)
	if publisher != nil {
		publishStatus(publisher, mqttStatus, tracker, "SHUTDOWN", signalName(received))
	}
	return nil
}

// runHeartbeat publishes a HEARTBEAT status event on every tick until stop
// is closed.
func runHeartbeat(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, tick <-chan time.Time, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-tick:
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
			publishStatus(publisher, mqttStatus, tracker, "HEARTBEAT", "")
		}
	}
}

// publishStatus publishes a lifecycle event carrying the full status
// snapshot. STARTUP and SHUTDOWN are retained.
func publishStatus(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, event, reason string) {
	ev := mqtt.SystemEvent{
		Timestamp: time.Now(),
		Event:     event,
		Reason:    reason,
		Retained:  event != "HEARTBEAT",
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		snap := tracker.Snapshot()
		ev.Timestamp = snap.Now
		ev.RawPayload = status.FormatStatusEvent(snap, event, reason)
	}
	if err := publisher.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
		return
	}
	log.Printf("published %s event", event)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
