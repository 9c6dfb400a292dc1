//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealActuator is not available on non-Linux platforms.
type RealActuator struct{}

// NewRealActuator returns an error on non-Linux platforms.
func NewRealActuator(chip string, pin int) (*RealActuator, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (a *RealActuator) Set(on bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (a *RealActuator) Close() error {
	return nil
}

// RealButtons is not available on non-Linux platforms.
type RealButtons struct{}

// NewRealButtons returns an error on non-Linux platforms.
func NewRealButtons(chip string, pinUp, pinDown int, debounce time.Duration, onUp, onDown Handler) (*RealButtons, error) {
	return nil, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (b *RealButtons) Close() error {
	return nil
}
