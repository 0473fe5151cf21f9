package logic

import (
	"math"
	"testing"
)

func TestAirCycleLiveness(t *testing.T) {
	// Starting OFF with stop=0, the first cycle where uptime exceeds the
	// interval must transition to ON with start = current uptime.
	c := NewAirCycle(3600000, 120000)
	snap := AirSnapshot{State: AirOff}

	if tr := c.Evaluate(snap, 3600000); tr != nil {
		t.Fatalf("transition at uptime == interval: %+v (guard is strict >)", tr)
	}

	tr := c.Evaluate(snap, 3600001)
	if tr == nil {
		t.Fatal("no transition one ms past the interval")
	}
	if tr.To != EventAirOn {
		t.Errorf("transition = %s, want AIR_ON", tr.To)
	}
	if tr.Uptime != 3600001 {
		t.Errorf("transition uptime = %d, want 3600001", tr.Uptime)
	}
}

func TestAirCycleDurationBound(t *testing.T) {
	// Starting ON at t0, state holds for [t0, t0+duration) and turns OFF at
	// the first evaluation with uptime-t0 >= duration.
	const t0 = 5000000
	c := NewAirCycle(3600000, 120000)
	snap := AirSnapshot{State: AirOn, Start: t0}

	for _, u := range []uint32{t0, t0 + 1, t0 + 60000, t0 + 119999} {
		if tr := c.Evaluate(snap, u); tr != nil {
			t.Errorf("uptime %d: unexpected transition %+v", u, tr)
		}
	}

	tr := c.Evaluate(snap, t0+120000)
	if tr == nil {
		t.Fatal("no transition at uptime-start == duration")
	}
	if tr.To != EventAirOff {
		t.Errorf("transition = %s, want AIR_OFF", tr.To)
	}
}

func TestAirCycleNoRetriggerWhileOn(t *testing.T) {
	// While ON, the interval guard must never fire; only the duration guard
	// applies.
	c := NewAirCycle(10000, 2000)
	snap := AirSnapshot{State: AirOn, Start: 50000, Stop: 0}

	if tr := c.Evaluate(snap, 51000); tr != nil {
		t.Errorf("unexpected transition while ON with duration unmet: %+v", tr)
	}
}

func TestAirCycleBlankStorageBoot(t *testing.T) {
	// Blank storage reads as all-zero: state OFF, stop 0. No transition
	// until the first interval has fully elapsed.
	c := NewAirCycle(3600000, 120000)
	snap := AirSnapshot{State: StateFromByte(0)}

	if tr := c.Evaluate(snap, 1000); tr != nil {
		t.Errorf("transition right after blank boot: %+v", tr)
	}
}

func TestAirCycleGuardAcrossWrap(t *testing.T) {
	// Stop timestamp near the top of the range, uptime wrapped past zero.
	c := NewAirCycle(3600000, 120000)
	stop := uint32(math.MaxUint32 - 1000000)
	snap := AirSnapshot{State: AirOff, Stop: stop}

	// 30 minutes past stop, crossing the wrap: no transition yet.
	if tr := c.Evaluate(snap, stop+1800000); tr != nil {
		t.Errorf("transition 30m past stop: %+v", tr)
	}
	// Just over an hour past stop: transition.
	if tr := c.Evaluate(snap, stop+3600001); tr == nil {
		t.Error("no transition one hour past stop across wrap")
	}
}

func TestApplyTransitions(t *testing.T) {
	snap := AirSnapshot{State: AirOff, Start: 100, Stop: 200}

	on := Apply(snap, Transition{To: EventAirOn, Uptime: 5000})
	if on.State != AirOn || on.Start != 5000 || on.Stop != 200 {
		t.Errorf("after AIR_ON: %+v", on)
	}

	off := Apply(on, Transition{To: EventAirOff, Uptime: 7000})
	if off.State != AirOff || off.Start != 5000 || off.Stop != 7000 {
		t.Errorf("after AIR_OFF: %+v", off)
	}
}

func TestStateByteRoundTrip(t *testing.T) {
	if StateFromByte(ByteFromState(AirOn)) != AirOn {
		t.Error("ON does not round-trip")
	}
	if StateFromByte(ByteFromState(AirOff)) != AirOff {
		t.Error("OFF does not round-trip")
	}
	// Garbage in storage degrades to OFF, never ON.
	if StateFromByte(0xFF) != AirOff {
		t.Error("unrecognized status byte should read as OFF")
	}
}
