package logic

import (
	"errors"
	"sync"
	"time"
)

// ErrBadSequence is returned by Start for a zero pulse count or duration.
var ErrBadSequence = errors.New("beeper: pulses and duration must be positive")

// Beeper times a multi-pulse beep pattern without blocking the caller.
// Methods report the desired buzzer level; the caller applies it to the
// output line after the call returns, so the internal lock is never held
// across a component boundary.
//
// Start and Stop may be called from MQTT handler goroutines while Tick
// runs on the scheduler loop; all state is guarded by one mutex.
type Beeper struct {
	mu         sync.Mutex
	phase      Phase
	total      int
	completed  int
	duration   time.Duration
	phaseStart time.Time
}

// NewBeeper creates an idle beeper.
func NewBeeper() *Beeper {
	return &Beeper{phase: PhaseIdle}
}

// Start begins a new beep sequence, cancelling any sequence in flight.
// The newest start always wins; there is no queuing of pending requests.
// On success the returned level is true: the output is asserted
// immediately. Invalid arguments are rejected without touching the
// sequence or the output.
func (b *Beeper) Start(pulses int, duration time.Duration, now time.Time) (on bool, err error) {
	if pulses <= 0 || duration <= 0 {
		return false, ErrBadSequence
	}

	b.mu.Lock()
	b.total = pulses
	b.completed = 0
	b.duration = duration
	b.phase = PhaseOn
	b.phaseStart = now
	b.mu.Unlock()
	return true, nil
}

// Stop cancels any sequence and reports the deasserted level. Idempotent.
// The completed-pulse count is left as-is so callers can observe where the
// sequence was interrupted.
func (b *Beeper) Stop() (on bool) {
	b.mu.Lock()
	b.phase = PhaseIdle
	b.mu.Unlock()
	return false
}

// Tick advances the sequence and returns the level the output line should
// have, plus whether it changed during this call. Idle and Done phases are
// no-ops. Called unconditionally on every scheduler pass.
func (b *Beeper) Tick(now time.Time) (on, changed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.phase {
	case PhaseOn:
		if now.Sub(b.phaseStart) < b.duration {
			return true, false
		}
		b.completed++
		b.phaseStart = now
		if b.completed >= b.total {
			// Final pulse finished: terminal, no trailing Off interval.
			b.phase = PhaseDone
		} else {
			b.phase = PhaseOff
		}
		return false, true

	case PhaseOff:
		if now.Sub(b.phaseStart) < b.duration {
			return false, false
		}
		// completed < total is guaranteed here: Done is entered the moment
		// the final On phase elapses.
		b.phase = PhaseOn
		b.phaseStart = now
		return true, true

	default:
		return false, false
	}
}

// Active returns true only while a sequence is in flight (On or Off).
func (b *Beeper) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase == PhaseOn || b.phase == PhaseOff
}

// Phase returns the current sequencer phase.
func (b *Beeper) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Progress returns completed and total pulses of the current or last
// sequence.
func (b *Beeper) Progress() (completed, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.completed, b.total
}
