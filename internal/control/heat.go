package control

import "log"

// DecideHeatMode is the heat/report task. The incoming state is not used for
// dispatch. The first invocation only advances the counter because no
// temperature has been read yet. Later invocations switch the heater on when
// ambient is below the set-point, off otherwise, and emit one report record.
func (c *Controller) DecideHeatMode(state HeatState) HeatState {
	if c.seconds != 0 {
		if c.ambient < c.setPoint {
			state = HeatOn
		} else {
			state = HeatOff
		}
		c.heat = state
		if err := c.actuator.Set(state == HeatOn); err != nil {
			log.Printf("heat: actuator: %v", err)
		}

		rec := Record{
			Ambient:  c.ambient,
			SetPoint: c.setPoint,
			Heat:     state,
			Seconds:  c.seconds,
		}
		c.lastRecord = &rec
		c.sink.Emit(rec.String())
	}

	c.seconds++
	return state
}
