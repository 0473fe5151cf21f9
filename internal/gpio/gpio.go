// Package gpio drives the air exchange actuator output with hardware
// abstraction. The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Actuator drives the air exchange valve/fan control line.
type Actuator interface {
	// Set drives the line HIGH when on is true, LOW otherwise.
	Set(on bool) error

	// Close releases GPIO resources, leaving the line LOW.
	Close() error
}

// DefaultPinAir is the BCM pin number of the actuator relay.
const DefaultPinAir = 17
