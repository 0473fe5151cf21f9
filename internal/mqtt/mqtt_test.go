package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mfield/chamber-air/internal/logic"
)

func TestFormatPayload(t *testing.T) {
	event := logic.Event{
		Type:   logic.EventAirOn,
		State:  logic.AirOn,
		Uptime: 3600001,
	}

	data, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Air.Event != "AIR_ON" {
		t.Errorf("event = %q, want AIR_ON", parsed.Air.Event)
	}
	if parsed.Air.State != "ON" {
		t.Errorf("state = %q, want ON", parsed.Air.State)
	}
	if parsed.Air.UptimeMs != 3600001 {
		t.Errorf("uptime_ms = %d, want 3600001", parsed.Air.UptimeMs)
	}
	if _, err := time.Parse(time.RFC3339, parsed.Air.Timestamp); err != nil {
		t.Errorf("timestamp %q not RFC3339: %v", parsed.Air.Timestamp, err)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("event = %q, want SHUTDOWN", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("reason = %q, want SIGTERM", parsed.System.Reason)
	}
	if parsed.System.Timestamp != "2026-03-01T08:00:00Z" {
		t.Errorf("timestamp = %q", parsed.System.Timestamp)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"HEARTBEAT"}}`)
	data, err := FormatSystemPayload(SystemEvent{RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != string(raw) {
		t.Errorf("raw payload not passed through: %s", data)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	event := logic.Event{Type: logic.EventAirOff, State: logic.AirOff, Uptime: 120000}
	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.Events))
	}
	if f.Events[0].Type != logic.EventAirOff {
		t.Errorf("recorded type = %s", f.Events[0].Type)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("expected 1 payload, got %d", len(f.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")

	if err := f.Publish(logic.Event{}); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.Events) != 0 {
		t.Error("failed publish should not be recorded")
	}
}
