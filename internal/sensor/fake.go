package sensor

import (
	"errors"
	"sync"
)

// ErrNack is returned by FakeBus for addresses with no device.
var ErrNack = errors.New("i2c: no acknowledge")

// FakeBus is a test double holding scripted register contents per address.
type FakeBus struct {
	mu sync.Mutex

	// Devices maps an address to the 2-byte value returned on reads.
	// Addresses not present NACK.
	Devices map[uint16][2]byte

	// ReadError, if set, is returned for every transaction that reads data.
	ReadError error

	// Writes records the write buffer of every transaction, per address.
	Writes map[uint16][][]byte
}

// NewFakeBus creates an empty bus.
func NewFakeBus() *FakeBus {
	return &FakeBus{
		Devices: make(map[uint16][2]byte),
		Writes:  make(map[uint16][][]byte),
	}
}

// Set scripts the register value for addr.
func (f *FakeBus) Set(addr uint16, hi, lo byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Devices[addr] = [2]byte{hi, lo}
}

// SetReadError makes every reading transaction fail with err (nil clears).
func (f *FakeBus) SetReadError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadError = err
}

// Tx records w and fills r from the scripted value.
func (f *FakeBus) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Writes[addr] = append(f.Writes[addr], append([]byte(nil), w...))

	v, ok := f.Devices[addr]
	if !ok {
		return ErrNack
	}
	if len(r) > 0 && f.ReadError != nil {
		return f.ReadError
	}
	copy(r, v[:])
	return nil
}

// TxCount returns the number of transactions addressed to addr.
func (f *FakeBus) TxCount(addr uint16) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Writes[addr])
}
