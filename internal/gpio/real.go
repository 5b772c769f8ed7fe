//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// RealSensor reads the door sensor from actual hardware using the Linux
// GPIO character device. Kernel edge events update a single atomic field;
// Level serves that field without touching the hardware, so the poll loop
// never waits on an ioctl and edges between polls are not lost.
type RealSensor struct {
	chip  *gpiocdev.Chip
	line  *gpiocdev.Line
	level atomic.Int32
}

// NewRealSensor requests the sensor line as a pulled-up input with
// both-edge event reporting, and seeds the level from a real read so the
// first observed state comes from hardware rather than a default.
func NewRealSensor(chipName string, pin int) (*RealSensor, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	s := &RealSensor{chip: chip}
	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(s.handleEdge))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request sensor pin %d: %w", pin, err)
	}
	s.line = line

	v, err := line.Value()
	if err != nil {
		line.Close()
		chip.Close()
		return nil, fmt.Errorf("read sensor pin %d: %w", pin, err)
	}
	s.level.Store(int32(v))

	return s, nil
}

// handleEdge runs on the gpiocdev event goroutine. It performs a single
// atomic store and nothing else; debounce evaluation stays in task context.
func (s *RealSensor) handleEdge(evt gpiocdev.LineEvent) {
	if evt.Type == gpiocdev.LineEventRisingEdge {
		s.level.Store(1)
	} else {
		s.level.Store(0)
	}
}

// Level returns the latest observed raw level. Never fails after init.
func (s *RealSensor) Level() (bool, error) {
	return s.level.Load() != 0, nil
}

// Close releases the sensor line and chip.
func (s *RealSensor) Close() error {
	var errs []error
	if s.line != nil {
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sensor line: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealOutput drives an output line on actual hardware.
type RealOutput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealOutput requests the pin as an output, deasserted.
func NewRealOutput(chipName string, pin int) (*RealOutput, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}

	return &RealOutput{chip: chip, line: line}, nil
}

// Set asserts or deasserts the line.
func (o *RealOutput) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set output: %w", err)
	}
	return nil
}

// Close deasserts the line before releasing it, so a buzzer never stays on
// across a daemon restart.
func (o *RealOutput) Close() error {
	var errs []error
	if o.line != nil {
		if err := o.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("deassert output: %w", err))
		}
		if err := o.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output line: %w", err))
		}
	}
	if o.chip != nil {
		if err := o.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
