// Package link keeps MQTT connectivity for the door-sentry daemon usable
// under intermittent network conditions.
//
// The link is the combination of transport connectivity and session
// (pub/sub) connectivity. Recovery runs on two independent timescales: an
// event-driven fast path that reacts to disconnect notifications
// immediately, and a slow polled fallback that re-issues a reconnect
// whenever the link is still down, guarding against a stuck fast path.
package link

import "errors"

// MQTT topics used by the daemon.
const (
	TopicState        = "home/door/sentry/state"
	TopicCommand      = "home/door/sentry/cmd"
	TopicSystem       = "home/door/sentry/system"
	TopicAvailability = "home/door/sentry/availability"
)

// ErrNotConnected is returned by Publish when the link is down. Publish
// never blocks waiting for connectivity; the caller decides whether a lost
// message matters. State messages are republished on the next real
// transition, so their loss is self-healing.
var ErrNotConnected = errors.New("link: not connected")

// State is the logical link state, owned by the Manager.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	default:
		return "DISCONNECTED"
	}
}

// Client is the transport/session collaborator beneath the resilience
// manager. The real implementation wraps a paho MQTT client; the fake
// records calls for tests.
type Client interface {
	// Connect establishes transport and session. It may block the calling
	// goroutine until the attempt completes or times out, which is why the
	// Manager always issues it from its own goroutine.
	Connect() error

	// Publish sends a payload on an established session.
	Publish(topic string, qos byte, retained bool, payload []byte) error

	// Subscribe registers a handler for a topic on the current session.
	Subscribe(topic string, handler func(payload []byte)) error

	// IsConnected reports the session layer's own view of connectivity.
	IsConnected() bool

	// Disconnect tears the session down.
	Disconnect()
}
