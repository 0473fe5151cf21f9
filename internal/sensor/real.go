package sensor

import (
	"fmt"
	"time"

	"github.com/mikesmitty/sht4x"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
)

// RealReader reads an SHT4x temperature/humidity sensor over I2C.
type RealReader struct {
	bus i2c.BusCloser
	dev *sht4x.Dev
}

// NewRealReader opens the named I2C bus ("" selects the first available) and
// probes the sensor. The caller must have initialized the periph host.
func NewRealReader(busName string) (*RealReader, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	dev, err := sht4x.New(bus, nil)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("probe sht4x: %w", err)
	}

	return &RealReader{bus: bus, dev: dev}, nil
}

// Read triggers a measurement and converts it to plain units.
func (r *RealReader) Read() (Reading, error) {
	var e physic.Env
	if err := r.dev.Sense(&e); err != nil {
		return Reading{}, fmt.Errorf("read sht4x: %w", err)
	}
	return Reading{
		TemperatureC: e.Temperature.Celsius(),
		HumidityPct:  float64(e.Humidity) / float64(physic.PercentRH),
		Time:         time.Now(),
	}, nil
}

// Close releases the I2C bus.
func (r *RealReader) Close() error {
	return r.bus.Close()
}
