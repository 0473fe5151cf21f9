package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string      `json:"event,omitempty"`
	Reason           string      `json:"reason,omitempty"`
	Air              string      `json:"air"`
	UptimeMs         uint32      `json:"uptime_ms"`
	Uptime           string      `json:"uptime"`
	LastAirStartMs   uint32      `json:"last_air_start_ms"`
	LastAirStopMs    uint32      `json:"last_air_stop_ms"`
	ProcessUptimeSec int64       `json:"process_uptime_seconds"`
	StartTime        string      `json:"start_time"`
	Timestamp        string      `json:"timestamp"`
	MQTT             MQTTStatus  `json:"mqtt"`
	Counts           CountsJSON  `json:"cycle_counts"`
	Checkpoints      int         `json:"uptime_checkpoints"`
	Sensor           *SensorJSON `json:"sensor,omitempty"`
	Config           ConfigJSON  `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of cycle counts.
type CountsJSON struct {
	AirOn  int `json:"air_on"`
	AirOff int `json:"air_off"`
}

// SensorJSON is the JSON representation of the chamber reading.
type SensorJSON struct {
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	Time         string  `json:"time"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	CycleMs         int64  `json:"cycle_ms"`
	AirIntervalMs   int64  `json:"air_interval_ms"`
	AirDurationMs   int64  `json:"air_duration_ms"`
	StoreIntervalMs int64  `json:"store_interval_ms"`
	HeartbeatMs     int64  `json:"heartbeat_ms"`
	Broker          string `json:"broker"`
	HTTPAddr        string `json:"http_addr"`
	Persistence     bool   `json:"persistence"`
	Telemetry       bool   `json:"telemetry"`
	DebugLog        bool   `json:"debug_log"`
}

func buildInner(snap Snapshot) StatusInner {
	air := string(snap.Air)
	if air == "" {
		air = "UNKNOWN"
	}

	inner := StatusInner{
		Air:              air,
		UptimeMs:         snap.UptimeMs,
		Uptime:           HumanUptime(snap.UptimeMs),
		LastAirStartMs:   snap.LastStartMs,
		LastAirStopMs:    snap.LastStopMs,
		ProcessUptimeSec: int64(snap.ProcessUptime().Truncate(time.Second).Seconds()),
		StartTime:        snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:        snap.Now.UTC().Format(time.RFC3339),
		MQTT:             MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			AirOn:  snap.Counts.AirOn,
			AirOff: snap.Counts.AirOff,
		},
		Checkpoints: snap.Checkpoints,
		Config: ConfigJSON{
			CycleMs:         snap.Config.CycleMs,
			AirIntervalMs:   snap.Config.AirIntervalMs,
			AirDurationMs:   snap.Config.AirDurationMs,
			StoreIntervalMs: snap.Config.StoreIntervalMs,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			Broker:          snap.Config.Broker,
			HTTPAddr:        snap.Config.HTTPAddr,
			Persistence:     snap.Config.Persistence,
			Telemetry:       snap.Config.Telemetry,
			DebugLog:        snap.Config.DebugLog,
		},
	}

	if snap.Sensor != nil {
		inner.Sensor = &SensorJSON{
			TemperatureC: snap.Sensor.TemperatureC,
			HumidityPct:  snap.Sensor.HumidityPct,
			Time:         snap.Sensor.Time.UTC().Format(time.RFC3339),
		}
	}

	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
