// Package logic contains the pure control logic for the air exchange
// controller: the persistent uptime accumulator and the air cycle state
// machine. This package has NO external dependencies (no GPIO, MQTT, storage,
// or time.Sleep). The hardware millisecond tick is always injected as a
// parameter, so every path is testable with scripted clocks.
//
// All durations are unsigned 32-bit milliseconds. Subtraction is modular, so
// comparisons stay correct across the ~49.7 day counter wraparound.
package logic

// AirState represents the commanded state of the air exchange actuator.
type AirState string

const (
	AirOff AirState = "OFF"
	AirOn  AirState = "ON"
)

// EventType represents a state transition event.
type EventType string

const (
	EventAirOn  EventType = "AIR_ON"
	EventAirOff EventType = "AIR_OFF"
)

// AirSnapshot is the persisted view of the air cycle machine, re-read from
// durable storage at the top of every cycle before guards are evaluated.
type AirSnapshot struct {
	// State is the commanded actuator state.
	State AirState
	// Start is the uptime at the most recent OFF->ON transition, in ms.
	Start uint32
	// Stop is the uptime at the most recent ON->OFF transition, in ms.
	Stop uint32
}

// Transition describes a state change decided by the air cycle machine.
type Transition struct {
	To EventType
	// Uptime is the accumulated uptime at the moment of the transition. It
	// becomes the new Start or Stop timestamp.
	Uptime uint32
}

// Event represents a transition to be published to telemetry.
type Event struct {
	Type   EventType
	State  AirState
	Uptime uint32
}

// CycleCounts tracks the number of each transition since process start.
type CycleCounts struct {
	AirOn  int
	AirOff int
}

// StateFromByte normalizes a persisted status byte. Anything but 1 is OFF,
// so blank (all-zero) storage boots into OFF.
func StateFromByte(b byte) AirState {
	if b == 1 {
		return AirOn
	}
	return AirOff
}

// ByteFromState is the inverse of StateFromByte, for persistence.
func ByteFromState(s AirState) byte {
	if s == AirOn {
		return 1
	}
	return 0
}
