package logic

import "time"

// levelToState maps a raw sensor level to a door state. LOW means the
// magnet is present (door closed); HIGH means no magnet (door open). This
// is the hardware convention of the hall sensor, not configuration.
func levelToState(rawHigh bool) DoorState {
	if rawHigh {
		return DoorOpen
	}
	return DoorClosed
}

// Detector turns a noisy raw sensor level into debounced door transitions.
// At most one transition is accepted per debounce window, regardless of
// how many raw edges occurred within it.
type Detector struct {
	window        time.Duration
	stable        DoorState
	lastAccepted  time.Time
	counts        EventCounts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewDetector creates a detector seeded from a real read of the sensor
// line, so no spurious transition is ever reported at startup. The
// lastAccepted timestamp starts at the zero time: the first genuine edge
// after boot is never suppressed by the window. The startTime is used for
// calculating uptime in heartbeat events.
func NewDetector(initialRaw bool, window time.Duration, startTime time.Time) *Detector {
	return &Detector{
		window:        window,
		stable:        levelToState(initialRaw),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Observe takes the current raw level and a monotonic timestamp. It
// returns the new stable state and true only when the level differs from
// the stored stable state AND the debounce window has elapsed since the
// last accepted transition. Otherwise the stored state is returned with
// false and nothing is mutated.
func (d *Detector) Observe(raw bool, now time.Time) (DoorState, bool) {
	next := levelToState(raw)
	if next == d.stable {
		return d.stable, false
	}
	if now.Sub(d.lastAccepted) < d.window {
		return d.stable, false
	}

	d.stable = next
	d.lastAccepted = now
	switch next {
	case DoorOpen:
		d.counts.Opened++
	case DoorClosed:
		d.counts.Closed++
	}
	return d.stable, true
}

// State returns the current stable door state.
func (d *Detector) State() DoorState {
	return d.stable
}

// Counts returns transition totals since startup.
func (d *Detector) Counts() EventCounts {
	return d.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed, or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.counts,
	}
}
