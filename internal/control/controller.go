package control

import (
	"time"

	"github.com/sweeney/thermostat/internal/sched"
)

// Task names, in scheduling priority order.
const (
	TaskSetPoint    = "setpoint"
	TaskTemperature = "temperature"
	TaskHeat        = "heat"
)

// Config holds the controller's startup values.
type Config struct {
	SetPoint int16 // initial set-point, clamped to [MinSetPoint, MaxSetPoint]
	Register byte  // sensor result register
}

// Periods are the task periods. Each must be a multiple of the base tick.
type Periods struct {
	SetPoint    time.Duration
	Temperature time.Duration
	Heat        time.Duration
}

// DefaultPeriods returns the 200ms/500ms/1000ms task periods.
func DefaultPeriods() Periods {
	return Periods{
		SetPoint:    200 * time.Millisecond,
		Temperature: 500 * time.Millisecond,
		Heat:        1000 * time.Millisecond,
	}
}

// Controller is the shared control state plus the collaborators the state
// machines talk to. Every field except the mailbox has exactly one writer:
//
//	setPoint  set-point task
//	ambient   temperature task
//	seconds   heat task
//	heat      heat task
//
// All tasks run on the scheduler goroutine. Only the mailbox is written from
// elsewhere (button handlers).
type Controller struct {
	intent Mailbox

	setPoint int16
	ambient  int16
	seconds  int
	heat     HeatState

	sensor   Sensor
	register byte
	actuator Actuator
	sink     Sink

	sensorErrors  int
	lastSensorErr error
	lastRecord    *Record
}

// New creates a controller in its startup state.
func New(cfg Config, sensor Sensor, actuator Actuator, sink Sink) *Controller {
	return &Controller{
		setPoint: clamp(cfg.SetPoint),
		heat:     HeatInit,
		sensor:   sensor,
		register: cfg.Register,
		actuator: actuator,
		sink:     sink,
	}
}

// Mailbox returns the intent mailbox the button handlers post into.
func (c *Controller) Mailbox() *Mailbox {
	return &c.intent
}

// Tasks returns the three task descriptors in priority order: set-point,
// temperature, heat-mode.
func (c *Controller) Tasks(p Periods) []sched.Task {
	return []sched.Task{
		{
			Name:   TaskSetPoint,
			State:  sched.State(SetPointInit),
			Period: p.SetPoint,
			Step: func(s sched.State) sched.State {
				return sched.State(c.AdjustSetPoint(SetPointState(s)))
			},
		},
		{
			Name:   TaskTemperature,
			State:  sched.State(TempInit),
			Period: p.Temperature,
			Step: func(s sched.State) sched.State {
				return sched.State(c.AcquireTemperature(TempState(s)))
			},
		},
		{
			Name:   TaskHeat,
			State:  sched.State(HeatInit),
			Period: p.Heat,
			Step: func(s sched.State) sched.State {
				return sched.State(c.DecideHeatMode(HeatState(s)))
			},
		},
	}
}

// Snapshot is a copy of the controller state. Take it from the scheduler
// goroutine only.
type Snapshot struct {
	SetPoint      int16
	Ambient       int16
	Heat          HeatState
	Seconds       int
	Intent        Intent
	SensorErrors  int
	LastSensorErr string
	LastRecord    *Record
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		SetPoint:     c.setPoint,
		Ambient:      c.ambient,
		Heat:         c.heat,
		Seconds:      c.seconds,
		Intent:       c.intent.Peek(),
		SensorErrors: c.sensorErrors,
	}
	if c.lastSensorErr != nil {
		s.LastSensorErr = c.lastSensorErr.Error()
	}
	if c.lastRecord != nil {
		r := *c.lastRecord
		s.LastRecord = &r
	}
	return s
}

// SetPoint returns the current set-point.
func (c *Controller) SetPoint() int16 { return c.setPoint }

// Ambient returns the last good temperature reading.
func (c *Controller) Ambient() int16 { return c.ambient }

// Seconds returns the heat task's invocation count.
func (c *Controller) Seconds() int { return c.seconds }

// Heat returns the last heat decision.
func (c *Controller) Heat() HeatState { return c.heat }
