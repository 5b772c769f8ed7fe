// Package status provides a thread-safe status tracker for the door-sentry
// daemon. It is read by HTTP handlers and serialized into MQTT system
// events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/door-sentry/internal/logic"
)

// NetworkInfo contains network state reported by pi-helper. This is a
// local copy to avoid coupling status to the daemon's env handling.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs         int64
	DebounceMs     int64
	HeartbeatMs    int64
	SlowCheckMs    int64
	SessionCheckMs int64
	PulseCount     int
	PulseMs        int64
	Broker         string
	HTTPAddr       string
	WSBroker       string // Websocket broker URL for browser MQTT (empty = disabled)
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Door       logic.DoorState
	LinkState  string
	Reconnects int
	BeepPhase  logic.Phase
	BeepActive bool
	Counts     logic.EventCounts
	Beeps      int
	Commands   int
	StartTime  time.Time
	Now        time.Time
	Network    *NetworkInfo
	Config     Config
	Recent     []Transition
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu     sync.RWMutex
	snap   Snapshot
	recent *history
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			BeepPhase: logic.PhaseIdle,
		},
		recent: newHistory(recentCapacity),
	}
}

// Update sets the door state, beep phase and transition counts.
// Called from the tick loop on every pass.
func (t *Tracker) Update(door logic.DoorState, phase logic.Phase, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Door = door
	t.snap.BeepPhase = phase
	t.snap.BeepActive = phase == logic.PhaseOn || phase == logic.PhaseOff
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetLink sets the link state and reconnect request count.
func (t *Tracker) SetLink(state string, reconnects int) {
	t.mu.Lock()
	t.snap.LinkState = state
	t.snap.Reconnects = reconnects
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Record appends a door transition to the recent-transition history.
func (t *Tracker) Record(at time.Time, state logic.DoorState) {
	t.mu.Lock()
	t.recent.push(Transition{Time: at, State: state})
	t.mu.Unlock()
}

// CountBeep increments the started-beep counter.
func (t *Tracker) CountBeep() {
	t.mu.Lock()
	t.snap.Beeps++
	t.mu.Unlock()
}

// CountCommand increments the handled-command counter.
func (t *Tracker) CountCommand() {
	t.mu.Lock()
	t.snap.Commands++
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Recent = t.recent.list()
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
