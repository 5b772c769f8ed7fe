// Package gpio provides GPIO access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Sensor exposes the door sensor line.
type Sensor interface {
	// Level returns the latest observed raw level (true = HIGH = no magnet).
	// The real implementation serves the value captured by the kernel
	// edge-event handler and never blocks.
	Level() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Output drives a single digital output line.
type Output interface {
	// Set asserts (true) or deasserts (false) the line.
	Set(on bool) error

	// Close deasserts the line and releases GPIO resources.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinSensor = 5  // A3144 hall sensor input
	DefaultPinBuzzer = 12 // active buzzer output
	DefaultPinLED    = 2  // link status LED output
)
