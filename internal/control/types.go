// Package control contains the thermostat's state machines and the shared
// state they operate on. It has no hardware dependencies: the sensor bus,
// heater output and report sink are small interfaces supplied by the caller.
package control

import "fmt"

// Set-point bounds and default.
const (
	MinSetPoint     int16 = 0
	MaxSetPoint     int16 = 99
	DefaultSetPoint int16 = 20
)

// Resolution is the sensor's degrees Celsius per LSB.
const Resolution = 0.0078125

// signExtend is OR'd into a decoded reading whose raw high byte has its MSB set.
const signExtend int16 = -0x1000 // 0xF000

// Intent is a pending button action.
type Intent int32

const (
	IntentNone Intent = iota
	IntentIncrease
	IntentDecrease
)

func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "NONE"
	case IntentIncrease:
		return "INCREASE"
	case IntentDecrease:
		return "DECREASE"
	}
	return fmt.Sprintf("Intent(%d)", int32(i))
}

// SetPointState is the set-point task's state.
type SetPointState int

const (
	SetPointInit SetPointState = iota
	SetPointIdle
)

// TempState is the temperature task's state.
type TempState int

const (
	TempInit TempState = iota
	TempRead
)

// HeatState is the heater decision. Its numeric value is the report's H field.
type HeatState int

const (
	HeatOff HeatState = iota
	HeatOn
	HeatInit
)

func (h HeatState) String() string {
	switch h {
	case HeatOff:
		return "OFF"
	case HeatOn:
		return "ON"
	case HeatInit:
		return "INIT"
	}
	return fmt.Sprintf("HeatState(%d)", int(h))
}

// Sensor performs one register transaction on the temperature sensor:
// write w, then read len(r) bytes into r.
type Sensor interface {
	Tx(w, r []byte) error
}

// Actuator drives the heater output.
type Actuator interface {
	Set(on bool) error
}

// Sink receives report lines. Emit must not block the caller.
type Sink interface {
	Emit(line string)
}

// Record is one heat-mode report.
type Record struct {
	Ambient  int16
	SetPoint int16
	Heat     HeatState
	Seconds  int
}

// String formats the record as <AA,SS,H,EEEE>.
func (r Record) String() string {
	return fmt.Sprintf("<%02d,%02d,%d,%04d>", r.Ambient, r.SetPoint, int(r.Heat), r.Seconds)
}
