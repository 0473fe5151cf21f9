package main

import (
	"log"
	"time"

	"github.com/mfield/chamber-air/internal/gpio"
	"github.com/mfield/chamber-air/internal/logic"
	"github.com/mfield/chamber-air/internal/mqtt"
	"github.com/mfield/chamber-air/internal/nvram"
	"github.com/mfield/chamber-air/internal/status"
)

// controllerDeps collects the collaborators the control loop needs. All are
// interfaces or plain structs so tests can use fakes throughout.
type controllerDeps struct {
	store    nvram.Store
	layout   nvram.Layout
	actuator gpio.Actuator
	pub      mqtt.Publisher
	tracker  *status.Tracker
	opts     options
}

// controller runs one pass of the air exchange control cycle: advance the
// uptime accumulator, re-read the persisted air state, evaluate the
// transition guards, drive the actuator, and throttle durable writes.
// It is single-threaded; step must only be called from the control loop.
type controller struct {
	deps controllerDeps

	acc     *logic.Accumulator
	machine logic.AirCycle
	tick    func() uint32

	// air is the volatile copy of the persisted snapshot. With persistence
	// enabled it is refreshed from storage every cycle before evaluation.
	air logic.AirSnapshot

	counts      logic.CycleCounts
	checkpoints int

	heartbeatMs   uint32
	lastHeartbeat uint32
}

func newController(deps controllerDeps, persistedUptime uint32, air logic.AirSnapshot,
	tick func() uint32, airInterval, airDuration, storeInterval, heartbeat time.Duration) *controller {

	return &controller{
		deps:          deps,
		acc:           logic.NewAccumulator(persistedUptime, tick(), uint32(storeInterval.Milliseconds())),
		machine:       logic.NewAirCycle(uint32(airInterval.Milliseconds()), uint32(airDuration.Milliseconds())),
		tick:          tick,
		air:           air,
		heartbeatMs:   uint32(heartbeat.Milliseconds()),
		lastHeartbeat: persistedUptime,
	}
}

// loadState reads the persisted uptime and air snapshot. Blank storage reads
// as all-zero: zero uptime, state OFF, zero timestamps — the first-boot state.
func loadState(store nvram.Store, layout nvram.Layout) (uint32, logic.AirSnapshot, error) {
	uptime, err := store.ReadUint32(layout.Uptime)
	if err != nil {
		return 0, logic.AirSnapshot{}, err
	}
	statusByte, err := store.ReadByte(layout.AirStatus)
	if err != nil {
		return 0, logic.AirSnapshot{}, err
	}
	start, err := store.ReadUint32(layout.AirStart)
	if err != nil {
		return 0, logic.AirSnapshot{}, err
	}
	stop, err := store.ReadUint32(layout.AirStop)
	if err != nil {
		return 0, logic.AirSnapshot{}, err
	}
	return uptime, logic.AirSnapshot{
		State: logic.StateFromByte(statusByte),
		Start: start,
		Stop:  stop,
	}, nil
}

// step runs one control cycle.
func (c *controller) step() {
	uptime := c.acc.Advance(c.tick())

	snap := c.readBack()

	if tr := c.machine.Evaluate(snap, uptime); tr != nil {
		c.transition(snap, *tr, uptime)
	} else if c.acc.CheckpointDue() {
		c.checkpoint(uptime)
	}

	if c.heartbeatMs > 0 && uptime-c.lastHeartbeat >= c.heartbeatMs {
		c.lastHeartbeat = uptime
		c.heartbeat(uptime)
	}

	if c.deps.opts.DebugLog {
		log.Printf("cycle: uptime=%dms air=%s start=%d stop=%d checkpoint=%d",
			uptime, c.air.State, c.air.Start, c.air.Stop, c.acc.LastCheckpoint())
	}

	c.deps.tracker.Update(c.air.State, uptime, c.air.Start, c.air.Stop, c.counts, c.checkpoints)
}

// readBack refreshes the air snapshot from durable storage. The values were
// written by this process, but re-reading keeps volatile and durable state
// trivially consistent; reads do not wear the part. Falls back to the
// volatile copy on read errors or with persistence disabled.
func (c *controller) readBack() logic.AirSnapshot {
	if !c.deps.opts.Persistence {
		return c.air
	}

	statusByte, err := c.deps.store.ReadByte(c.deps.layout.AirStatus)
	if err != nil {
		log.Printf("nvram read error: %v", err)
		return c.air
	}
	start, err := c.deps.store.ReadUint32(c.deps.layout.AirStart)
	if err != nil {
		log.Printf("nvram read error: %v", err)
		return c.air
	}
	stop, err := c.deps.store.ReadUint32(c.deps.layout.AirStop)
	if err != nil {
		log.Printf("nvram read error: %v", err)
		return c.air
	}

	c.air = logic.AirSnapshot{State: logic.StateFromByte(statusByte), Start: start, Stop: stop}
	return c.air
}

// transition applies a state change: actuator first, then persistence, then a
// forced uptime checkpoint so timestamps and uptime cannot drift apart across
// a power loss before the next periodic write.
func (c *controller) transition(snap logic.AirSnapshot, tr logic.Transition, uptime uint32) {
	next := logic.Apply(snap, tr)

	if err := c.deps.actuator.Set(next.State == logic.AirOn); err != nil {
		log.Printf("actuator error: %v", err)
	}

	c.persistAir(next, tr.To)
	c.checkpoint(uptime)
	c.air = next

	switch tr.To {
	case logic.EventAirOn:
		c.counts.AirOn++
	case logic.EventAirOff:
		c.counts.AirOff++
	}

	log.Printf("event: %s at uptime %s", tr.To, status.HumanUptime(uptime))
	event := logic.Event{Type: tr.To, State: next.State, Uptime: uptime}
	if err := c.deps.pub.Publish(event); err != nil {
		log.Printf("publish error: %v", err)
		// Don't crash on publish failure
	}
}

// persistAir writes the status byte and the timestamp the transition touched.
func (c *controller) persistAir(next logic.AirSnapshot, to logic.EventType) {
	if !c.deps.opts.Persistence {
		return
	}

	if err := c.deps.store.WriteByte(c.deps.layout.AirStatus, logic.ByteFromState(next.State)); err != nil {
		log.Printf("nvram write error: %v", err)
	}
	switch to {
	case logic.EventAirOn:
		if err := c.deps.store.WriteUint32(c.deps.layout.AirStart, next.Start); err != nil {
			log.Printf("nvram write error: %v", err)
		}
	case logic.EventAirOff:
		if err := c.deps.store.WriteUint32(c.deps.layout.AirStop, next.Stop); err != nil {
			log.Printf("nvram write error: %v", err)
		}
	}
}

// checkpoint durably writes the current uptime and resets the throttle.
// With persistence disabled the throttle still advances so the cadence of the
// loop matches production.
func (c *controller) checkpoint(uptime uint32) {
	if c.deps.opts.Persistence {
		if err := c.deps.store.WriteUint32(c.deps.layout.Uptime, uptime); err != nil {
			log.Printf("nvram write error: %v", err)
			return
		}
		c.checkpoints++
	}
	c.acc.MarkCheckpointed()
}

// heartbeat publishes the periodic status dump with the uptime rendered as
// days/hours/minutes/seconds.
func (c *controller) heartbeat(uptime uint32) {
	log.Printf("heartbeat: uptime=%s air=%s on=%d off=%d",
		status.HumanUptime(uptime), c.air.State, c.counts.AirOn, c.counts.AirOff)

	c.deps.tracker.Update(c.air.State, uptime, c.air.Start, c.air.Stop, c.counts, c.checkpoints)
	snap := c.deps.tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
	}
	if err := c.deps.pub.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

// shutdown advances the accumulator one last time and writes a final
// checkpoint, so a clean stop loses no uptime.
func (c *controller) shutdown() {
	uptime := c.acc.Advance(c.tick())
	c.checkpoint(uptime)
	c.deps.tracker.Update(c.air.State, uptime, c.air.Start, c.air.Stop, c.counts, c.checkpoints)
}
