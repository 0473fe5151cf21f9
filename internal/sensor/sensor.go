// Package sensor polls the chamber temperature/humidity sensor. Sampling
// runs on its own loop at its own pace and only exposes read values; it
// never participates in the control cycle's timing.
package sensor

import "time"

// Reading is a single temperature/humidity measurement.
type Reading struct {
	TemperatureC float64
	HumidityPct  float64
	Time         time.Time
}

// Reader reads one measurement from the hardware.
type Reader interface {
	// Read blocks for the sensor's conversion time and returns the
	// measurement.
	Read() (Reading, error)

	// Close releases the bus.
	Close() error
}

// MinPeriod is the floor on the sampling period. The sensor needs its
// conversion latency between triggers; polling faster returns stale or
// corrupt data.
const MinPeriod = 800 * time.Millisecond
