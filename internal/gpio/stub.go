//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealSensor is not available on non-Linux platforms.
type RealSensor struct{}

// NewRealSensor returns an error on non-Linux platforms.
func NewRealSensor(chipName string, pin int) (*RealSensor, error) {
	return nil, errUnsupported
}

// Level is not implemented on non-Linux platforms.
func (s *RealSensor) Level() (bool, error) {
	return false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (s *RealSensor) Close() error {
	return nil
}

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// NewRealOutput returns an error on non-Linux platforms.
func NewRealOutput(chipName string, pin int) (*RealOutput, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (o *RealOutput) Set(on bool) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (o *RealOutput) Close() error {
	return nil
}
