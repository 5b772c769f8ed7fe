package gpio

import (
	"errors"
	"testing"
)

func TestFakeSensorScriptedLevels(t *testing.T) {
	s := NewFakeSensor(true, true, false)

	want := []bool{true, true, false, false, false} // last level repeats
	for i, w := range want {
		got, err := s.Level()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d: got %v, want %v", i, got, w)
		}
	}
}

func TestFakeSensorReadError(t *testing.T) {
	s := NewFakeSensor(true)
	s.ReadError = errors.New("chip gone")

	if _, err := s.Level(); err == nil {
		t.Error("expected read error")
	}
}

func TestFakeSensorEmpty(t *testing.T) {
	s := NewFakeSensor()
	if _, err := s.Level(); err == nil {
		t.Error("expected error for empty script")
	}
}

func TestFakeSensorClose(t *testing.T) {
	s := NewFakeSensor(true)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !s.Closed {
		t.Error("Closed not set")
	}
}

func TestFakeOutputHistory(t *testing.T) {
	o := NewFakeOutput()

	if o.On() {
		t.Error("unset output must report off")
	}

	o.Set(true)
	o.Set(false)
	o.Set(true)

	if len(o.History) != 3 {
		t.Fatalf("history: got %d entries", len(o.History))
	}
	if !o.On() {
		t.Error("last level must win")
	}
}

func TestFakeOutputSetError(t *testing.T) {
	o := NewFakeOutput()
	o.SetError = errors.New("line busy")

	if err := o.Set(true); err == nil {
		t.Error("expected set error")
	}
	if len(o.History) != 0 {
		t.Error("failed set must not record history")
	}
}
