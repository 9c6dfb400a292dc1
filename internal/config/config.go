// Package config loads the thermostat daemon configuration from YAML.
// Missing fields fall back to Default.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/thermostat/internal/control"
	"github.com/sweeney/thermostat/internal/gpio"
)

// Config represents the daemon configuration.
type Config struct {
	Timing     TimingConfig     `yaml:"timing"`
	Thermostat ThermostatConfig `yaml:"thermostat"`
	GPIO       GPIOConfig       `yaml:"gpio"`
	Sensor     SensorConfig     `yaml:"sensor"`
	Serial     SerialConfig     `yaml:"serial"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	HTTP       HTTPConfig       `yaml:"http"`
}

// TimingConfig holds the base tick and the task periods.
type TimingConfig struct {
	Tick              time.Duration `yaml:"tick"`
	SetPointPeriod    time.Duration `yaml:"setpoint_period"`
	TemperaturePeriod time.Duration `yaml:"temperature_period"`
	HeatPeriod        time.Duration `yaml:"heat_period"`
}

// ThermostatConfig holds control parameters.
type ThermostatConfig struct {
	SetPoint *int16 `yaml:"setpoint"` // nil = default; 0 is a valid set-point
}

// GPIOConfig contains GPIO chip and pin numbers (BCM).
type GPIOConfig struct {
	Chip     string        `yaml:"chip"`
	PinUp    int           `yaml:"pin_up"`
	PinDown  int           `yaml:"pin_down"`
	PinHeat  int           `yaml:"pin_heater"`
	Debounce time.Duration `yaml:"debounce"`
}

// SensorConfig selects the I2C bus and, optionally, a fixed sensor address.
type SensorConfig struct {
	Bus     string `yaml:"bus"`     // "" = first bus
	Address uint16 `yaml:"address"` // 0 = probe known parts
}

// SerialConfig contains the report console port. An empty port disables it.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// MQTTConfig contains broker settings. An empty broker disables MQTT.
type MQTTConfig struct {
	Broker      string        `yaml:"broker"`
	ClientID    string        `yaml:"client_id"`
	ReportTopic string        `yaml:"report_topic"`
	SystemTopic string        `yaml:"system_topic"`
	Heartbeat   time.Duration `yaml:"heartbeat"` // 0 disables
}

// HTTPConfig contains the status server address. Empty disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the default configuration.
func Default() *Config {
	sp := control.DefaultSetPoint
	p := control.DefaultPeriods()
	return &Config{
		Timing: TimingConfig{
			Tick:              100 * time.Millisecond,
			SetPointPeriod:    p.SetPoint,
			TemperaturePeriod: p.Temperature,
			HeatPeriod:        p.Heat,
		},
		Thermostat: ThermostatConfig{
			SetPoint: &sp,
		},
		GPIO: GPIOConfig{
			Chip:     gpio.DefaultChip,
			PinUp:    gpio.DefaultPinUp,
			PinDown:  gpio.DefaultPinDown,
			PinHeat:  gpio.DefaultPinHeater,
			Debounce: 20 * time.Millisecond,
		},
		Serial: SerialConfig{
			Baud: 115200,
		},
		MQTT: MQTTConfig{
			ClientID:  "thermostat",
			Heartbeat: 15 * time.Minute,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values. The result is validated.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills zero values that have no meaning as zero.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Timing.Tick == 0 {
		c.Timing.Tick = def.Timing.Tick
	}
	if c.Timing.SetPointPeriod == 0 {
		c.Timing.SetPointPeriod = def.Timing.SetPointPeriod
	}
	if c.Timing.TemperaturePeriod == 0 {
		c.Timing.TemperaturePeriod = def.Timing.TemperaturePeriod
	}
	if c.Timing.HeatPeriod == 0 {
		c.Timing.HeatPeriod = def.Timing.HeatPeriod
	}

	if c.Thermostat.SetPoint == nil {
		c.Thermostat.SetPoint = def.Thermostat.SetPoint
	}

	if c.GPIO.Chip == "" {
		c.GPIO.Chip = def.GPIO.Chip
	}
	if c.GPIO.PinUp == 0 {
		c.GPIO.PinUp = def.GPIO.PinUp
	}
	if c.GPIO.PinDown == 0 {
		c.GPIO.PinDown = def.GPIO.PinDown
	}
	if c.GPIO.PinHeat == 0 {
		c.GPIO.PinHeat = def.GPIO.PinHeat
	}

	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
}

// Validate checks that the task periods are positive multiples of the tick,
// the set-point is within bounds and the pins are distinct.
func (c *Config) Validate() error {
	var errs []error

	if c.Timing.Tick <= 0 {
		errs = append(errs, fmt.Errorf("timing.tick must be positive, got %v", c.Timing.Tick))
	} else {
		for name, p := range map[string]time.Duration{
			"timing.setpoint_period":    c.Timing.SetPointPeriod,
			"timing.temperature_period": c.Timing.TemperaturePeriod,
			"timing.heat_period":        c.Timing.HeatPeriod,
		} {
			if p <= 0 || p%c.Timing.Tick != 0 {
				errs = append(errs, fmt.Errorf("%s %v is not a positive multiple of tick %v", name, p, c.Timing.Tick))
			}
		}
	}

	if sp := c.SetPoint(); sp < control.MinSetPoint || sp > control.MaxSetPoint {
		errs = append(errs, fmt.Errorf("thermostat.setpoint %d outside [%d, %d]", sp, control.MinSetPoint, control.MaxSetPoint))
	}

	if c.GPIO.PinUp == c.GPIO.PinDown || c.GPIO.PinUp == c.GPIO.PinHeat || c.GPIO.PinDown == c.GPIO.PinHeat {
		errs = append(errs, fmt.Errorf("gpio pins must be distinct (up=%d down=%d heater=%d)", c.GPIO.PinUp, c.GPIO.PinDown, c.GPIO.PinHeat))
	}

	if c.MQTT.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("mqtt.heartbeat must not be negative, got %v", c.MQTT.Heartbeat))
	}

	return errors.Join(errs...)
}

// SetPoint returns the initial set-point.
func (c *Config) SetPoint() int16 {
	if c.Thermostat.SetPoint == nil {
		return control.DefaultSetPoint
	}
	return *c.Thermostat.SetPoint
}

// Periods returns the task periods.
func (c *Config) Periods() control.Periods {
	return control.Periods{
		SetPoint:    c.Timing.SetPointPeriod,
		Temperature: c.Timing.TemperaturePeriod,
		Heat:        c.Timing.HeatPeriod,
	}
}
