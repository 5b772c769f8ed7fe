// Package logic contains pure state machines for the door-sentry daemon.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// DoorState represents the debounced position of the door. The string
// values are the literal MQTT state payloads.
type DoorState string

const (
	DoorOpen   DoorState = "OPEN"
	DoorClosed DoorState = "CLOSED"
)

// Phase is the beep sequencer phase. The buzzer output level is fully
// determined by the phase: On means asserted, everything else deasserted.
type Phase string

const (
	PhaseIdle Phase = "IDLE"
	PhaseOn   Phase = "ON"
	PhaseOff  Phase = "OFF"
	PhaseDone Phase = "DONE"
)

// EventCounts tracks door transition totals since startup.
type EventCounts struct {
	Opened int
	Closed int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
