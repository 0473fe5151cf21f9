package logic

import (
	"math"
	"testing"
)

func TestAccumulatorSumsDeltas(t *testing.T) {
	a := NewAccumulator(0, 0, 60000)

	deltas := []uint32{1000, 1000, 997, 1003, 250, 12000}
	var tick, want uint32
	for _, d := range deltas {
		tick += d
		want += d
		got := a.Advance(tick)
		if got != want {
			t.Fatalf("after delta %d: uptime = %d, want %d", d, got, want)
		}
	}

	if a.Uptime() != want {
		t.Errorf("Uptime() = %d, want %d", a.Uptime(), want)
	}
}

func TestAccumulatorRestoresPersistedValue(t *testing.T) {
	// Boot with 5 hours of prior uptime and a tick source that has already
	// been running for a while. The first Advance must add only the new
	// delta, never the tick value itself.
	a := NewAccumulator(18000000, 123456, 60000)

	got := a.Advance(123456 + 1000)
	if got != 18001000 {
		t.Errorf("uptime after first cycle = %d, want 18001000", got)
	}
}

func TestAccumulatorTickWraparound(t *testing.T) {
	// Tick counter rolls over from near-max to a small value. Modular
	// subtraction must yield the true elapsed time.
	start := uint32(math.MaxUint32 - 400)
	a := NewAccumulator(7000, start, 60000)

	got := a.Advance(599) // 400 ms to the wrap point, 600 past it
	if got != 8000 {
		t.Errorf("uptime across tick wrap = %d, want 8000", got)
	}
}

func TestAccumulatorSkippedCycleStillExact(t *testing.T) {
	// The accumulator sums whatever deltas it observes; a long gap between
	// calls is one big delta, not an error.
	a := NewAccumulator(0, 0, 60000)
	a.Advance(1000)
	a.Advance(9000)
	if a.Uptime() != 9000 {
		t.Errorf("uptime = %d, want 9000", a.Uptime())
	}
}

func TestCheckpointThrottling(t *testing.T) {
	const interval = 60000
	a := NewAccumulator(0, 0, interval)

	writes := 0
	var tick uint32
	for i := 0; i < 600; i++ { // 10 minutes at 1 Hz
		tick += 1000
		a.Advance(tick)
		if a.CheckpointDue() {
			writes++
			a.MarkCheckpointed()
		}
	}

	// 600s of uptime with a 60s interval: a write becomes due strictly
	// after each full interval, so at most 10 writes, and at least 9.
	if writes > 10 {
		t.Errorf("got %d checkpoint writes in 600s, want <= 10", writes)
	}
	if writes < 9 {
		t.Errorf("got %d checkpoint writes in 600s, want >= 9", writes)
	}
}

func TestCheckpointNotDueAtBoundary(t *testing.T) {
	a := NewAccumulator(0, 0, 60000)
	a.Advance(60000)
	if a.CheckpointDue() {
		t.Error("checkpoint due at exactly storeInterval; guard is strict >")
	}
	a.Advance(60001)
	if !a.CheckpointDue() {
		t.Error("checkpoint not due one ms past storeInterval")
	}
}

func TestCheckpointDueAcrossUptimeWrap(t *testing.T) {
	// lastCheckpoint sits just below the uint32 wrap; uptime has wrapped
	// past zero. The modular guard must still fire at the right distance.
	a := NewAccumulator(math.MaxUint32-1000, 0, 60000)

	a.Advance(500) // uptime now MaxUint32-500
	if a.CheckpointDue() {
		t.Error("checkpoint due only 500ms past last checkpoint")
	}
	a.Advance(61000) // uptime wrapped to 59999... region
	if !a.CheckpointDue() {
		t.Error("checkpoint not due 61000ms past last checkpoint across wrap")
	}
}

func TestMarkCheckpointed(t *testing.T) {
	a := NewAccumulator(0, 0, 60000)
	a.Advance(70000)
	if !a.CheckpointDue() {
		t.Fatal("expected checkpoint due")
	}
	a.MarkCheckpointed()
	if a.CheckpointDue() {
		t.Error("checkpoint still due after MarkCheckpointed")
	}
	if a.LastCheckpoint() != 70000 {
		t.Errorf("LastCheckpoint = %d, want 70000", a.LastCheckpoint())
	}
}
