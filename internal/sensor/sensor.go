// Package sensor talks to the I2C temperature sensor. Boards ship with one of
// several TMP-family parts, so the address is found by probing a fixed table
// at startup unless configured.
package sensor

import (
	"fmt"

	"github.com/sweeney/thermostat/internal/report"
)

// Bus is an I2C bus: write w then read len(r) bytes from the device at addr.
// periph.io's i2c.Bus satisfies it.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// Candidate is a sensor part the probe knows about.
type Candidate struct {
	Addr     uint16
	Register byte // temperature result register
	ID       string
}

// Candidates is the probe order.
var Candidates = []Candidate{
	{Addr: 0x48, Register: 0x00, ID: "11X"},
	{Addr: 0x49, Register: 0x00, ID: "116"},
	{Addr: 0x41, Register: 0x01, ID: "006"},
}

// Device is one sensor on a bus.
type Device struct {
	bus  Bus
	addr uint16
}

// NewDevice binds addr on bus.
func NewDevice(bus Bus, addr uint16) *Device {
	return &Device{bus: bus, addr: addr}
}

// Addr returns the device address.
func (d *Device) Addr() uint16 {
	return d.addr
}

// Tx performs one transaction with the device.
func (d *Device) Tx(w, r []byte) error {
	if err := d.bus.Tx(d.addr, w, r); err != nil {
		return fmt.Errorf("i2c 0x%02x: %w", d.addr, err)
	}
	return nil
}

// Probe tries each candidate in order with a register-select write and
// returns the first that acknowledges. Progress is written to out.
func Probe(bus Bus, candidates []Candidate, out report.Sink) (Candidate, bool) {
	for _, c := range candidates {
		ok := bus.Tx(c.Addr, []byte{c.Register}, nil) == nil
		if ok {
			out.Emit(fmt.Sprintf("Is this %s? Found", c.ID))
			out.Emit(fmt.Sprintf("Detected TMP%s I2C address: %x", c.ID, c.Addr))
			return c, true
		}
		out.Emit(fmt.Sprintf("Is this %s? No", c.ID))
	}
	out.Emit("Temperature sensor not found, check wiring")
	return Candidate{}, false
}

// Lookup returns the candidate at addr, or a generic entry reading
// register 0 when addr is not in the table.
func Lookup(addr uint16) Candidate {
	for _, c := range Candidates {
		if c.Addr == addr {
			return c
		}
	}
	return Candidate{Addr: addr, Register: 0x00, ID: fmt.Sprintf("@%02x", addr)}
}
