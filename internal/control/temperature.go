package control

import "fmt"

// AcquireTemperature is the temperature task. Init moves to Read without
// touching the sensor. Read updates the ambient temperature; a failed
// transfer keeps the previous value and reports the failure on the sink.
func (c *Controller) AcquireTemperature(state TempState) TempState {
	switch state {
	case TempInit:
		return TempRead
	case TempRead:
		t, err := c.readTemperature()
		if err != nil {
			c.sensorErrors++
			c.lastSensorErr = err
			c.sink.Emit(fmt.Sprintf("Error reading temperature sensor (%v)", err))
			c.sink.Emit("Please power cycle your board by unplugging USB and plugging back in.")
			return TempRead
		}
		c.ambient = t
		return TempRead
	}
	return state
}

func (c *Controller) readTemperature() (int16, error) {
	var rx [2]byte
	if err := c.sensor.Tx([]byte{c.register}, rx[:]); err != nil {
		return 0, err
	}
	return DecodeTemperature(rx[0], rx[1]), nil
}

// DecodeTemperature converts the sensor's big-endian result register to whole
// degrees Celsius. The raw value is scaled first (truncating toward zero) and
// the sign bits are OR'd into the scaled result when the raw MSB is set.
//
// TODO: the sign extension is applied after scaling, so it only matters for
// results that are not already negative. Confirm against the sensor
// datasheet whether it should be applied to the raw register instead.
func DecodeTemperature(hi, lo byte) int16 {
	raw := int16(uint16(hi)<<8 | uint16(lo))
	t := int16(float64(raw) * Resolution)
	if hi&0x80 != 0 {
		t |= signExtend
	}
	return t
}
