package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// BusSpeed is the I2C clock used for the sensor.
const BusSpeed = 400 * physic.KiloHertz

// OpenBus initialises the host drivers and opens the named I2C bus ("" for
// the first one available) at BusSpeed.
func OpenBus(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}

	if err := bus.SetSpeed(BusSpeed); err != nil {
		bus.Close()
		return nil, fmt.Errorf("set i2c speed: %w", err)
	}
	return bus, nil
}
