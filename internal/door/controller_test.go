package door

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/door-sentry/internal/gpio"
	"github.com/sweeney/door-sentry/internal/link"
	"github.com/sweeney/door-sentry/internal/logic"
	"github.com/sweeney/door-sentry/internal/status"
)

type pubMsg struct {
	topic    string
	qos      byte
	retained bool
	payload  string
}

// fakePub records publish calls for assertions.
type fakePub struct {
	msgs []pubMsg
	err  error
}

func (f *fakePub) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, pubMsg{topic: topic, qos: qos, retained: retained, payload: string(payload)})
	return nil
}

func newTestController(pub Publisher, tracker *status.Tracker) (*Controller, *logic.Beeper, *gpio.FakeOutput) {
	beeper := logic.NewBeeper()
	buzzer := gpio.NewFakeOutput()
	ctrl := New(DefaultConfig(), pub, beeper, buzzer, tracker)
	return ctrl, beeper, buzzer
}

func TestTransitionPublishesThenBeeps(t *testing.T) {
	pub := &fakePub{}
	ctrl, beeper, buzzer := newTestController(pub, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ctrl.HandleTransition(logic.DoorClosed, now)

	if len(pub.msgs) != 1 {
		t.Fatalf("publishes: got %d, want 1", len(pub.msgs))
	}
	m := pub.msgs[0]
	if m.topic != link.TopicState {
		t.Errorf("topic: got %s, want %s", m.topic, link.TopicState)
	}
	if m.payload != "CLOSED" {
		t.Errorf("payload: got %q, want CLOSED", m.payload)
	}
	if m.qos != 1 || m.retained {
		t.Errorf("unexpected qos/retain: %+v", m)
	}

	if !beeper.Active() {
		t.Error("default beep must be started")
	}
	_, total := beeper.Progress()
	if total != DefaultConfig().DefaultPulseCount {
		t.Errorf("pulse count: got %d, want %d", total, DefaultConfig().DefaultPulseCount)
	}
	if !buzzer.On() {
		t.Error("buzzer must be asserted after start")
	}
}

func TestTransitionOpenPayload(t *testing.T) {
	pub := &fakePub{}
	ctrl, _, _ := newTestController(pub, nil)

	ctrl.HandleTransition(logic.DoorOpen, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	if len(pub.msgs) != 1 || pub.msgs[0].payload != "OPEN" {
		t.Fatalf("unexpected publishes: %+v", pub.msgs)
	}
}

func TestTransitionPublishFailureStillBeeps(t *testing.T) {
	pub := &fakePub{err: link.ErrNotConnected}
	ctrl, beeper, buzzer := newTestController(pub, nil)

	ctrl.HandleTransition(logic.DoorOpen, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	// A dropped publish is logged and swallowed; the beep still runs.
	if !beeper.Active() {
		t.Error("beep must start even when the publish is dropped")
	}
	if !buzzer.On() {
		t.Error("buzzer must be asserted")
	}
}

func TestTransitionRestartsBeepInProgress(t *testing.T) {
	pub := &fakePub{}
	ctrl, beeper, _ := newTestController(pub, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ctrl.HandleTransition(logic.DoorOpen, now)
	ctrl.Tick(now.Add(DefaultConfig().DefaultPulseDuration)) // completed=1

	ctrl.HandleTransition(logic.DoorClosed, now.Add(300*time.Millisecond))
	completed, _ := beeper.Progress()
	if completed != 0 {
		t.Errorf("restart must reset progress, got %d", completed)
	}
}

func TestCommandBeep(t *testing.T) {
	pub := &fakePub{}
	tracker := status.NewTracker(time.Now(), status.Config{})
	ctrl, beeper, buzzer := newTestController(pub, tracker)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ctrl.HandleCommand([]byte("BEEP"), now)

	if !beeper.Active() {
		t.Fatal("BEEP must start a sequence")
	}
	_, total := beeper.Progress()
	if total != commandPulses {
		t.Errorf("pulse count: got %d, want %d", total, commandPulses)
	}
	if !buzzer.On() {
		t.Error("buzzer must be asserted")
	}
	if snap := tracker.Snapshot(); snap.Commands != 1 || snap.Beeps != 1 {
		t.Errorf("counters: commands=%d beeps=%d", snap.Commands, snap.Beeps)
	}
}

func TestCommandStop(t *testing.T) {
	pub := &fakePub{}
	ctrl, beeper, buzzer := newTestController(pub, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ctrl.HandleCommand([]byte("BEEP"), now)
	ctrl.HandleCommand([]byte("STOP"), now.Add(50*time.Millisecond))

	if beeper.Active() {
		t.Error("STOP must cancel the sequence")
	}
	if beeper.Phase() != logic.PhaseIdle {
		t.Errorf("expected Idle, got %s", beeper.Phase())
	}
	if buzzer.On() {
		t.Error("buzzer must be deasserted")
	}
}

func TestCommandUnknownIgnored(t *testing.T) {
	pub := &fakePub{}
	tracker := status.NewTracker(time.Now(), status.Config{})
	ctrl, beeper, buzzer := newTestController(pub, tracker)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, payload := range []string{"", "beep", "BEEP ", "RESET", "STOPP"} {
		ctrl.HandleCommand([]byte(payload), now)
	}

	if beeper.Active() {
		t.Error("unknown payloads must not start a beep")
	}
	if len(buzzer.History) != 0 {
		t.Errorf("buzzer touched by unknown payloads: %v", buzzer.History)
	}
	if snap := tracker.Snapshot(); snap.Commands != 0 {
		t.Errorf("unknown payloads counted as commands: %d", snap.Commands)
	}
	if len(pub.msgs) != 0 {
		t.Errorf("unexpected publishes: %+v", pub.msgs)
	}
}

func TestTickDrivesBuzzer(t *testing.T) {
	pub := &fakePub{}
	ctrl, beeper, buzzer := newTestController(pub, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ctrl.HandleCommand([]byte("BEEP"), now) // 5 pulses, 300ms

	// Tick inside the pulse: no output change recorded.
	ctrl.Tick(now.Add(100 * time.Millisecond))
	if len(buzzer.History) != 1 {
		t.Fatalf("history after quiet tick: %v", buzzer.History)
	}

	// Pulse boundary: deassert.
	ctrl.Tick(now.Add(300 * time.Millisecond))
	if buzzer.On() {
		t.Error("buzzer must be deasserted after the pulse elapses")
	}
	if beeper.Phase() != logic.PhaseOff {
		t.Errorf("expected Off, got %s", beeper.Phase())
	}
}

func TestBuzzerErrorLoggedNotFatal(t *testing.T) {
	pub := &fakePub{}
	beeper := logic.NewBeeper()
	buzzer := gpio.NewFakeOutput()
	buzzer.SetError = errors.New("line gone")
	ctrl := New(DefaultConfig(), pub, beeper, buzzer, nil)

	// Must not panic; the sequencer state still advances.
	ctrl.HandleCommand([]byte("BEEP"), time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	if !beeper.Active() {
		t.Error("sequence must start despite output errors")
	}
}
