// Package door orchestrates the edge detector, beep sequencer and link
// manager: transitions become state publishes and beeps, inbound commands
// drive the buzzer.
package door

import (
	"log"
	"time"

	"github.com/sweeney/door-sentry/internal/gpio"
	"github.com/sweeney/door-sentry/internal/link"
	"github.com/sweeney/door-sentry/internal/logic"
	"github.com/sweeney/door-sentry/internal/status"
)

// Publisher is the slice of the link manager the controller needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// Command payloads recognized on the command topic. Exact matches only;
// anything else is ignored without error.
const (
	cmdBeep = "BEEP"
	cmdStop = "STOP"
)

// Beep parameters for the BEEP command, fixed by the external contract.
const (
	commandPulses        = 5
	commandPulseDuration = 300 * time.Millisecond
)

// Controller maps door transitions to state publishes and beep sequences.
type Controller struct {
	cfg     Config
	pub     Publisher
	beeper  *logic.Beeper
	buzzer  gpio.Output
	tracker *status.Tracker // optional
}

// New creates a Controller. tracker may be nil.
func New(cfg Config, pub Publisher, beeper *logic.Beeper, buzzer gpio.Output, tracker *status.Tracker) *Controller {
	return &Controller{
		cfg:     cfg,
		pub:     pub,
		beeper:  beeper,
		buzzer:  buzzer,
		tracker: tracker,
	}
}

// HandleTransition publishes the new state, then starts the default beep,
// restarting any beep in progress. The publish comes first; a failed
// publish is logged and dropped, because the next real transition
// republishes current state.
func (c *Controller) HandleTransition(state logic.DoorState, now time.Time) {
	if err := c.pub.Publish(link.TopicState, 1, false, []byte(state)); err != nil {
		log.Printf("door: publish %s: %v", state, err)
	} else {
		log.Printf("door: published %s", state)
	}

	c.startBeep(c.cfg.DefaultPulseCount, c.cfg.DefaultPulseDuration, now)
}

// HandleCommand processes an inbound payload from the command topic.
// Called from the link collaborator's goroutine.
func (c *Controller) HandleCommand(payload []byte, now time.Time) {
	switch string(payload) {
	case cmdBeep:
		log.Printf("door: command BEEP")
		c.startBeep(commandPulses, commandPulseDuration, now)
		if c.tracker != nil {
			c.tracker.CountCommand()
		}
	case cmdStop:
		log.Printf("door: command STOP")
		c.applyBuzzer(c.beeper.Stop())
		if c.tracker != nil {
			c.tracker.CountCommand()
		}
	default:
		// Unrecognized payloads are ignored.
	}
}

// Tick advances the beep sequence and applies any output change.
// Called unconditionally on every scheduler pass; never blocks.
func (c *Controller) Tick(now time.Time) {
	on, changed := c.beeper.Tick(now)
	if changed {
		c.applyBuzzer(on)
	}
}

// BeepPhase returns the sequencer phase for status reporting.
func (c *Controller) BeepPhase() logic.Phase {
	return c.beeper.Phase()
}

func (c *Controller) startBeep(pulses int, duration time.Duration, now time.Time) {
	on, err := c.beeper.Start(pulses, duration, now)
	if err != nil {
		log.Printf("door: beep rejected: %v", err)
		return
	}
	c.applyBuzzer(on)
	if c.tracker != nil {
		c.tracker.CountBeep()
	}
}

func (c *Controller) applyBuzzer(on bool) {
	if err := c.buzzer.Set(on); err != nil {
		log.Printf("door: set buzzer: %v", err)
	}
}
