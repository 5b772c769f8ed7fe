package logic

import (
	"testing"
	"time"
)

func TestNewDetectorSeedsFromRealRead(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	d := NewDetector(true, 100*time.Millisecond, start)
	if d.State() != DoorOpen {
		t.Errorf("raw HIGH should seed OPEN, got %s", d.State())
	}

	d = NewDetector(false, 100*time.Millisecond, start)
	if d.State() != DoorClosed {
		t.Errorf("raw LOW should seed CLOSED, got %s", d.State())
	}
}

func TestNoEventForStableLevel(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(true, 100*time.Millisecond, start)

	for i := 0; i < 20; i++ {
		now := start.Add(time.Duration(i) * 10 * time.Millisecond)
		if _, changed := d.Observe(true, now); changed {
			t.Fatalf("iteration %d: unexpected transition for stable level", i)
		}
	}
	if d.State() != DoorOpen {
		t.Errorf("state drifted to %s", d.State())
	}
}

func TestFirstEdgeAcceptedImmediately(t *testing.T) {
	// lastAccepted starts at the zero time, so the first genuine edge
	// after boot must not be suppressed by the window.
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(true, 100*time.Millisecond, start)

	state, changed := d.Observe(false, start.Add(10*time.Millisecond))
	if !changed {
		t.Fatal("first edge should be accepted")
	}
	if state != DoorClosed {
		t.Errorf("expected CLOSED, got %s", state)
	}
}

func TestAtMostOneTransitionPerWindow(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(true, 100*time.Millisecond, start)

	// First edge accepted.
	if _, changed := d.Observe(false, start); !changed {
		t.Fatal("first edge should be accepted")
	}

	// Bounce furiously inside the window: no further transitions.
	transitions := 0
	for i := 1; i < 10; i++ {
		now := start.Add(time.Duration(i) * 10 * time.Millisecond)
		raw := i%2 == 0 // alternate levels
		if _, changed := d.Observe(raw, now); changed {
			transitions++
		}
	}
	if transitions != 0 {
		t.Errorf("expected 0 transitions inside window, got %d", transitions)
	}
	if d.State() != DoorClosed {
		t.Errorf("state should still be CLOSED, got %s", d.State())
	}

	// At the end of the window the level observed there wins.
	state, changed := d.Observe(true, start.Add(100*time.Millisecond))
	if !changed {
		t.Fatal("edge at window end should be accepted")
	}
	if state != DoorOpen {
		t.Errorf("expected OPEN, got %s", state)
	}
}

func TestEdgeIgnoredWhenMatchingStable(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(false, 100*time.Millisecond, start)

	// Window long elapsed, but level matches stable: no event, and
	// lastAccepted must not move.
	if _, changed := d.Observe(false, start.Add(time.Hour)); changed {
		t.Fatal("unexpected transition for matching level")
	}

	state, changed := d.Observe(true, start.Add(time.Hour+time.Millisecond))
	if !changed || state != DoorOpen {
		t.Fatalf("real edge after quiet period should be accepted, got %s changed=%v", state, changed)
	}
}

func TestTransitionCounts(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(true, 100*time.Millisecond, start)

	d.Observe(false, start.Add(200*time.Millisecond)) // CLOSED
	d.Observe(true, start.Add(400*time.Millisecond))  // OPEN
	d.Observe(false, start.Add(600*time.Millisecond)) // CLOSED

	counts := d.Counts()
	if counts.Opened != 1 {
		t.Errorf("Opened: got %d, want 1", counts.Opened)
	}
	if counts.Closed != 2 {
		t.Errorf("Closed: got %d, want 2", counts.Closed)
	}
}

func TestCheckHeartbeat(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(true, 100*time.Millisecond, start)
	interval := 15 * time.Minute

	if hb := d.CheckHeartbeat(start.Add(interval-time.Second), interval); hb != nil {
		t.Error("heartbeat before interval should be nil")
	}

	hb := d.CheckHeartbeat(start.Add(interval), interval)
	if hb == nil {
		t.Fatal("heartbeat at interval should fire")
	}
	if hb.Uptime != interval {
		t.Errorf("uptime: got %v, want %v", hb.Uptime, interval)
	}

	// Immediately after, the timer has reset.
	if hb := d.CheckHeartbeat(start.Add(interval+time.Second), interval); hb != nil {
		t.Error("heartbeat should not fire again immediately")
	}
}

func TestCheckHeartbeatDisabled(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(true, 100*time.Millisecond, start)

	if hb := d.CheckHeartbeat(start.Add(time.Hour), 0); hb != nil {
		t.Error("heartbeat with interval 0 should be disabled")
	}
}
