package door

import (
	"time"

	"github.com/sweeney/door-sentry/internal/gpio"
)

// Config collects every tunable of the daemon in one place. Values are
// populated from flags in main; defaults match the deployed hardware.
type Config struct {
	// DebounceWindow is the minimum time between accepted door transitions.
	DebounceWindow time.Duration

	// SensorPollInterval is the period of the main tick loop.
	SensorPollInterval time.Duration

	// DefaultPulseCount and DefaultPulseDuration describe the beep started
	// on every door transition.
	DefaultPulseCount    int
	DefaultPulseDuration time.Duration

	// SlowCheckInterval is the period of the link's fallback reconnect.
	SlowCheckInterval time.Duration

	// SessionCheckInterval is the period of the session health check.
	SessionCheckInterval time.Duration

	Broker    string
	Heartbeat time.Duration
	HTTPAddr  string
	WSBroker  string

	PinSensor int
	PinBuzzer int
	PinLED    int
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		DebounceWindow:       100 * time.Millisecond,
		SensorPollInterval:   10 * time.Millisecond,
		DefaultPulseCount:    3,
		DefaultPulseDuration: 200 * time.Millisecond,
		SlowCheckInterval:    60 * time.Second,
		SessionCheckInterval: 5 * time.Second,
		Broker:               "tcp://192.168.1.200:1883",
		Heartbeat:            15 * time.Minute,
		HTTPAddr:             ":80",
		PinSensor:            gpio.DefaultPinSensor,
		PinBuzzer:            gpio.DefaultPinBuzzer,
		PinLED:               gpio.DefaultPinLED,
	}
}
