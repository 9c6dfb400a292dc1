//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealActuator drives the heater line on actual hardware.
type RealActuator struct {
	line *gpiocdev.Line
}

// NewRealActuator requests pin as an output, initially inactive.
func NewRealActuator(chip string, pin int) (*RealActuator, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request heater pin %d: %w", pin, err)
	}
	return &RealActuator{line: line}, nil
}

// Set drives the heater line.
func (a *RealActuator) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := a.line.SetValue(v); err != nil {
		return fmt.Errorf("set heater pin: %w", err)
	}
	return nil
}

// Close switches the heater off and releases the line.
// The line is left as an input with pull-down so the relay stays off
// across reboots.
func (a *RealActuator) Close() error {
	var errs []error

	if err := a.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear heater pin: %w", err))
	}
	if err := a.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure heater pin: %w", err))
	}
	if err := a.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close heater pin: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealButtons watches the two button lines for falling edges.
type RealButtons struct {
	up   *gpiocdev.Line
	down *gpiocdev.Line
}

// NewRealButtons requests both button pins as pulled-up inputs with
// falling-edge events. onUp and onDown are called from gpiocdev's event
// goroutine.
func NewRealButtons(chip string, pinUp, pinDown int, debounce time.Duration, onUp, onDown Handler) (*RealButtons, error) {
	up, err := requestButton(chip, pinUp, debounce, onUp)
	if err != nil {
		return nil, fmt.Errorf("request up button pin %d: %w", pinUp, err)
	}

	down, err := requestButton(chip, pinDown, debounce, onDown)
	if err != nil {
		up.Close()
		return nil, fmt.Errorf("request down button pin %d: %w", pinDown, err)
	}

	return &RealButtons{up: up, down: down}, nil
}

func requestButton(chip string, pin int, debounce time.Duration, h Handler) (*gpiocdev.Line, error) {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { h() }),
	}
	if debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(debounce))
	}
	return gpiocdev.RequestLine(chip, pin, opts...)
}

// Close releases both button lines.
func (b *RealButtons) Close() error {
	var errs []error
	if b.up != nil {
		if err := b.up.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close up button: %w", err))
		}
	}
	if b.down != nil {
		if err := b.down.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close down button: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
