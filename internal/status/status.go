// Package status provides a thread-safe status tracker for the chamber-air
// daemon. It is read by the HTTP handlers and by the MQTT system event
// formatting; the control loop writes to it once per cycle.
package status

import (
	"fmt"
	"sync"
	"time"

	"github.com/mfield/chamber-air/internal/logic"
	"github.com/mfield/chamber-air/internal/sensor"
)

// Config contains daemon configuration for display.
type Config struct {
	CycleMs         int64
	AirIntervalMs   int64
	AirDurationMs   int64
	StoreIntervalMs int64
	HeartbeatMs     int64
	Broker          string
	HTTPAddr        string
	Persistence     bool
	Telemetry       bool
	DebugLog        bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Air           logic.AirState
	UptimeMs      uint32 // cumulative persisted device uptime
	LastStartMs   uint32
	LastStopMs    uint32
	Counts        logic.CycleCounts
	Checkpoints   int
	Sensor        *sensor.Reading
	StartTime     time.Time // this process start, not device uptime
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// ProcessUptime returns the duration since the daemon process started.
func (s Snapshot) ProcessUptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the air cycle view. Called from the control loop every cycle.
func (t *Tracker) Update(air logic.AirState, uptimeMs, startMs, stopMs uint32, counts logic.CycleCounts, checkpoints int) {
	t.mu.Lock()
	t.snap.Air = air
	t.snap.UptimeMs = uptimeMs
	t.snap.LastStartMs = startMs
	t.snap.LastStopMs = stopMs
	t.snap.Counts = counts
	t.snap.Checkpoints = checkpoints
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetSensor sets the latest chamber reading.
func (t *Tracker) SetSensor(r *sensor.Reading) {
	t.mu.Lock()
	t.snap.Sensor = r
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// HumanUptime renders a millisecond uptime as days/hours/minutes/seconds.
func HumanUptime(ms uint32) string {
	s := ms / 1000
	days := s / 86400
	h := s % 86400 / 3600
	m := s % 3600 / 60
	sec := s % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, sec)
	}
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
