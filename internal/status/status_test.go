package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mfield/chamber-air/internal/logic"
	"github.com/mfield/chamber-air/internal/sensor"
)

func TestTrackerUpdateAndSnapshot(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{Broker: "tcp://broker:1883", AirIntervalMs: 3600000})

	tr.Update(logic.AirOn, 7200000, 7100000, 3500000, logic.CycleCounts{AirOn: 2, AirOff: 1}, 120)
	tr.SetMQTTConnected(true)

	snap := tr.Snapshot()
	if snap.Air != logic.AirOn {
		t.Errorf("Air = %s, want ON", snap.Air)
	}
	if snap.UptimeMs != 7200000 {
		t.Errorf("UptimeMs = %d, want 7200000", snap.UptimeMs)
	}
	if snap.Counts.AirOn != 2 || snap.Counts.AirOff != 1 {
		t.Errorf("Counts = %+v", snap.Counts)
	}
	if snap.Checkpoints != 120 {
		t.Errorf("Checkpoints = %d, want 120", snap.Checkpoints)
	}
	if !snap.MQTTConnected {
		t.Error("MQTTConnected = false, want true")
	}
	if snap.Now.IsZero() {
		t.Error("Snapshot did not set Now")
	}
}

func TestSnapshotIsValueCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	snap := tr.Snapshot()

	tr.Update(logic.AirOn, 1000, 1000, 0, logic.CycleCounts{AirOn: 1}, 1)

	if snap.Air == logic.AirOn {
		t.Error("snapshot mutated by later Update")
	}
}

func TestHumanUptime(t *testing.T) {
	cases := []struct {
		ms   uint32
		want string
	}{
		{0, "0s"},
		{5000, "5s"},
		{65000, "1m 5s"},
		{3600000, "1h 0m 0s"},
		{90061000, "1d 1h 1m 1s"},
		{180000000, "2d 2h 0m 0s"},
	}
	for _, c := range cases {
		if got := HumanUptime(c.ms); got != c.want {
			t.Errorf("HumanUptime(%d) = %q, want %q", c.ms, got, c.want)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{
		CycleMs:         1000,
		AirIntervalMs:   3600000,
		AirDurationMs:   120000,
		StoreIntervalMs: 60000,
		Broker:          "tcp://broker:1883",
		Persistence:     true,
		Telemetry:       true,
	})
	tr.Update(logic.AirOff, 90061000, 100, 200, logic.CycleCounts{AirOn: 3, AirOff: 3}, 42)
	tr.SetSensor(&sensor.Reading{TemperatureC: 21.2, HumidityPct: 87.5, Time: start})

	data := FormatJSON(tr.Snapshot())

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Air != "OFF" {
		t.Errorf("air = %q, want OFF", parsed.Status.Air)
	}
	if parsed.Status.Uptime != "1d 1h 1m 1s" {
		t.Errorf("uptime = %q, want 1d 1h 1m 1s", parsed.Status.Uptime)
	}
	if parsed.Status.Event != "" {
		t.Errorf("web JSON should not carry event, got %q", parsed.Status.Event)
	}
	if parsed.Status.Sensor == nil {
		t.Fatal("sensor block missing")
	}
	if parsed.Status.Sensor.TemperatureC != 21.2 {
		t.Errorf("temperature = %v", parsed.Status.Sensor.TemperatureC)
	}
	if !parsed.Status.Config.Persistence {
		t.Error("config.persistence = false, want true")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	data := FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("event = %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("reason = %q, want SIGTERM", parsed.Status.Reason)
	}
	if parsed.Status.Air != "UNKNOWN" {
		t.Errorf("unset air state = %q, want UNKNOWN", parsed.Status.Air)
	}
}
