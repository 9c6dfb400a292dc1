package gpio

import "sync"

// FakeActuator is a test double that records every output write.
type FakeActuator struct {
	mu sync.Mutex

	// Values contains every value passed to Set, in order.
	Values []bool

	// SetError, if set, will be returned by Set (the value is still recorded).
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeActuator creates a FakeActuator.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// Set records the output value.
func (f *FakeActuator) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Values = append(f.Values, on)
	return f.SetError
}

// On reports the last value written, false if none.
func (f *FakeActuator) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Values) == 0 {
		return false
	}
	return f.Values[len(f.Values)-1]
}

// Close marks the actuator as closed.
func (f *FakeActuator) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakeActuator) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Values = nil
	f.Closed = false
}

// FakeButtons lets tests trigger button presses.
type FakeButtons struct {
	onUp   Handler
	onDown Handler

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeButtons creates FakeButtons that call the given handlers.
func NewFakeButtons(onUp, onDown Handler) *FakeButtons {
	return &FakeButtons{onUp: onUp, onDown: onDown}
}

// PressUp simulates a press of the increase button.
func (f *FakeButtons) PressUp() {
	if !f.Closed && f.onUp != nil {
		f.onUp()
	}
}

// PressDown simulates a press of the decrease button.
func (f *FakeButtons) PressDown() {
	if !f.Closed && f.onDown != nil {
		f.onDown()
	}
}

// Close stops delivering presses.
func (f *FakeButtons) Close() error {
	f.Closed = true
	return nil
}
