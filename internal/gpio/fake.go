package gpio

import "errors"

// FakeSensor is a test double that returns scripted raw levels.
type FakeSensor struct {
	// Levels contains scripted raw levels to return. Each call to Level()
	// consumes the next entry; the last entry repeats once exhausted.
	Levels []bool

	// index tracks current position in Levels
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Level()
	ReadError error
}

// NewFakeSensor creates a FakeSensor with the given levels.
func NewFakeSensor(levels ...bool) *FakeSensor {
	return &FakeSensor{Levels: levels}
}

// Level returns the next scripted raw level.
func (f *FakeSensor) Level() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Levels) == 0 {
		return false, errors.New("no levels configured")
	}

	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}
	return level, nil
}

// Close marks the sensor as closed.
func (f *FakeSensor) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the sensor to the beginning of its levels.
func (f *FakeSensor) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeOutput records every level applied to an output line.
type FakeOutput struct {
	// History contains every level passed to Set, in order.
	History []bool

	// SetError, if set, will be returned by Set()
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeOutput creates a FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the level.
func (f *FakeOutput) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.History = append(f.History, on)
	return nil
}

// On returns the last applied level, or false if Set was never called.
func (f *FakeOutput) On() bool {
	if len(f.History) == 0 {
		return false
	}
	return f.History[len(f.History)-1]
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded history.
func (f *FakeOutput) Reset() {
	f.History = nil
	f.Closed = false
	f.SetError = nil
}
