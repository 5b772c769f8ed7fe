package status

import (
	"time"

	"github.com/sweeney/door-sentry/internal/logic"
)

// recentCapacity is how many transitions the status page remembers.
const recentCapacity = 32

// Transition is one debounced door transition kept for display.
type Transition struct {
	Time  time.Time
	State logic.DoorState
}

// history is a fixed-capacity FIFO of recent transitions. When full, the
// oldest entry is overwritten. Not safe for concurrent use — the Tracker
// synchronizes access.
type history struct {
	buf   []Transition
	head  int // next write position
	count int
}

func newHistory(capacity int) *history {
	return &history{
		buf: make([]Transition, capacity),
	}
}

func (h *history) push(t Transition) {
	h.buf[h.head] = t
	h.head = (h.head + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// list returns the stored transitions, newest first.
func (h *history) list() []Transition {
	if h.count == 0 {
		return nil
	}

	result := make([]Transition, h.count)
	for i := 0; i < h.count; i++ {
		// Newest is at (head - 1), walking backwards.
		idx := (h.head - 1 - i + len(h.buf)) % len(h.buf)
		result[i] = h.buf[idx]
	}
	return result
}

func (h *history) len() int {
	return h.count
}
