// Package gpio provides the thermostat's button inputs and heater output
// with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Actuator drives the heater (and its indicator LED).
type Actuator interface {
	// Set drives the output active (on) or inactive.
	Set(on bool) error

	// Close releases GPIO resources.
	Close() error
}

// Buttons delivers falling-edge button presses to the handlers it was
// created with. Handlers run on the event goroutine and must return quickly.
type Buttons interface {
	// Close stops event delivery and releases GPIO resources.
	Close() error
}

// Handler is called once per debounced button press.
type Handler func()

// Default chip and pin definitions (BCM numbering).
const (
	DefaultChip      = "gpiochip0"
	DefaultPinUp     = 17 // set-point increase button
	DefaultPinDown   = 27 // set-point decrease button
	DefaultPinHeater = 22 // heater relay / LED
)
