package control

// AdjustSetPoint consumes the pending button intent. Increase and Decrease
// move the set-point by one, clamped to [MinSetPoint, MaxSetPoint]. The
// intent is cleared and the task always returns to Idle; Init behaves the
// same as Idle.
func (c *Controller) AdjustSetPoint(state SetPointState) SetPointState {
	intent := c.intent.Peek()

	switch intent {
	case IntentIncrease:
		if c.setPoint < MaxSetPoint {
			c.setPoint++
		}
	case IntentDecrease:
		if c.setPoint > MinSetPoint {
			c.setPoint--
		}
	}

	c.intent.Clear(intent)
	return SetPointIdle
}

func clamp(v int16) int16 {
	if v < MinSetPoint {
		return MinSetPoint
	}
	if v > MaxSetPoint {
		return MaxSetPoint
	}
	return v
}
