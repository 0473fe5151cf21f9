package logic

// Accumulator converts a free-running hardware millisecond tick into a
// cumulative uptime that survives power loss. The tick source wraps at
// 2^32 ms (~49.7 days); deltas are computed with modular subtraction so a
// wrap produces the correct positive elapsed time.
//
// Persistence of the accumulated value is throttled: durable storage has a
// finite write budget, so a checkpoint is written at most once per
// storeInterval of accumulated uptime. Up to one interval of uptime is lost
// on power failure. That loss is bounded and deliberate.
type Accumulator struct {
	uptime         uint32
	prevTick       uint32
	lastCheckpoint uint32
	storeInterval  uint32
}

// NewAccumulator restores an accumulator from a persisted uptime value.
// currentTick must be the hardware tick at the moment of the call so that the
// first Advance computes a near-zero delta. Time spent powered off is not
// measured; uptime freezes across a power cycle.
func NewAccumulator(persisted, currentTick, storeInterval uint32) *Accumulator {
	return &Accumulator{
		uptime:         persisted,
		prevTick:       currentTick,
		lastCheckpoint: persisted,
		storeInterval:  storeInterval,
	}
}

// Advance folds the current hardware tick into the cumulative uptime and
// returns the new value. Must be called every cycle: a skipped cycle
// undercounts and is not corrected later.
func (a *Accumulator) Advance(tick uint32) uint32 {
	delta := tick - a.prevTick // modular: correct across tick wraparound
	a.uptime += delta
	a.prevTick = tick
	return a.uptime
}

// Uptime returns the current accumulated uptime in milliseconds.
func (a *Accumulator) Uptime() uint32 {
	return a.uptime
}

// CheckpointDue reports whether more than storeInterval of uptime has
// accumulated since the last durable checkpoint.
func (a *Accumulator) CheckpointDue() bool {
	return a.uptime-a.lastCheckpoint > a.storeInterval
}

// MarkCheckpointed records that the current uptime was durably written.
// The caller owns the actual storage write.
func (a *Accumulator) MarkCheckpointed() {
	a.lastCheckpoint = a.uptime
}

// LastCheckpoint returns the uptime value of the most recent checkpoint.
func (a *Accumulator) LastCheckpoint() uint32 {
	return a.lastCheckpoint
}
