package logic

// AirCycle decides air exchange transitions from the persisted snapshot and
// the current uptime. It holds only the two schedule constants; all mutable
// state lives in the snapshot, which the caller re-reads from durable storage
// every cycle.
type AirCycle struct {
	interval uint32 // ms between the end of one cycle and the start of the next
	duration uint32 // ms the actuator stays on once triggered
}

// NewAirCycle creates a machine with the given interval and duration in
// milliseconds.
func NewAirCycle(interval, duration uint32) AirCycle {
	return AirCycle{interval: interval, duration: duration}
}

// Evaluate returns the transition required at the given uptime, or nil when
// the machine should stay in its current state. Guards use modular
// subtraction, so they remain correct when uptime has wrapped past a
// timestamp.
func (c AirCycle) Evaluate(snap AirSnapshot, uptime uint32) *Transition {
	switch snap.State {
	case AirOn:
		if uptime-snap.Start >= c.duration {
			return &Transition{To: EventAirOff, Uptime: uptime}
		}
	default:
		// OFF, or anything unrecognized from storage.
		if uptime-snap.Stop > c.interval {
			return &Transition{To: EventAirOn, Uptime: uptime}
		}
	}
	return nil
}

// Apply folds a transition into a snapshot, returning the snapshot that must
// be persisted.
func Apply(snap AirSnapshot, tr Transition) AirSnapshot {
	switch tr.To {
	case EventAirOn:
		snap.State = AirOn
		snap.Start = tr.Uptime
	case EventAirOff:
		snap.State = AirOff
		snap.Stop = tr.Uptime
	}
	return snap
}
