package link

import (
	"log"
	"sync"
	"time"
)

// Subscription is a topic handler re-applied after every reconnect,
// because a broker restart clears session subscriptions.
type Subscription struct {
	Topic   string
	Handler func(payload []byte)
}

// Manager keeps the link state converging to Connected with two
// independent recovery mechanisms. The fast path reacts to collaborator
// notifications; the slow path re-issues a reconnect on a fixed period
// whenever the link is still down. Reconnect attempts are unbounded.
//
// All state is guarded by one mutex; no lock is held while calling into
// the collaborator.
type Manager struct {
	slowInterval    time.Duration
	sessionInterval time.Duration

	mu            sync.Mutex
	client        Client
	state         State
	subs          []Subscription
	lastSlowCheck time.Time
	lastSessCheck time.Time
	reconnects    int
	connecting    bool
	onUp          func()
}

// NewManager creates a manager with the given fallback intervals. Bind
// must be called before Start.
func NewManager(slowInterval, sessionInterval time.Duration) *Manager {
	return &Manager{
		slowInterval:    slowInterval,
		sessionInterval: sessionInterval,
	}
}

// Bind attaches the transport/session collaborator. Separate from the
// constructor because the real client's notification handlers point back
// at this manager.
func (m *Manager) Bind(c Client) {
	m.mu.Lock()
	m.client = c
	m.mu.Unlock()
}

// SetOnUp registers a hook invoked after every successful (re)connect,
// once subscriptions have been re-applied.
func (m *Manager) SetOnUp(fn func()) {
	m.mu.Lock()
	m.onUp = fn
	m.mu.Unlock()
}

// Start stamps the fallback timers and issues the initial connect in the
// background. The daemon comes up even if the broker is unreachable; the
// slow path keeps retrying.
func (m *Manager) Start(now time.Time) {
	m.mu.Lock()
	m.lastSlowCheck = now
	m.lastSessCheck = now
	m.mu.Unlock()
	m.requestReconnect("startup", false)
}

// State returns the current logical link state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reconnects returns how many reconnect requests have been issued.
func (m *Manager) Reconnects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconnects
}

// Subscribe registers a subscription, applied now if the link is up and
// re-applied after every reconnect.
func (m *Manager) Subscribe(topic string, handler func(payload []byte)) {
	m.mu.Lock()
	m.subs = append(m.subs, Subscription{Topic: topic, Handler: handler})
	client := m.client
	connected := m.state == Connected
	m.mu.Unlock()

	if connected {
		if err := client.Subscribe(topic, handler); err != nil {
			log.Printf("link: subscribe %s: %v", topic, err)
		}
	}
}

// Publish sends a payload if the link is up. It fails immediately with
// ErrNotConnected otherwise and never blocks waiting for connectivity.
func (m *Manager) Publish(topic string, qos byte, retained bool, payload []byte) error {
	m.mu.Lock()
	client := m.client
	connected := m.state == Connected
	m.mu.Unlock()

	if !connected {
		return ErrNotConnected
	}
	return client.Publish(topic, qos, retained, payload)
}

// HandleConnectionLost is the fast path: mark the link down and issue an
// immediate reconnect without waiting for the fallback.
func (m *Manager) HandleConnectionLost(err error) {
	log.Printf("link: connection lost: %v", err)
	m.mu.Lock()
	m.state = Disconnected
	m.mu.Unlock()
	m.requestReconnect("connection lost", false)
}

// HandleConnected is invoked by the collaborator once transport and
// session are up. Subscriptions and the availability announcement are
// re-applied here because a broker restart clears both. Retry bookkeeping
// is reset.
func (m *Manager) HandleConnected() {
	m.mu.Lock()
	m.state = Connected
	m.connecting = false
	client := m.client
	subs := make([]Subscription, len(m.subs))
	copy(subs, m.subs)
	onUp := m.onUp
	m.mu.Unlock()

	log.Printf("link: connected")
	for _, s := range subs {
		if err := client.Subscribe(s.Topic, s.Handler); err != nil {
			log.Printf("link: resubscribe %s: %v", s.Topic, err)
		}
	}
	if err := client.Publish(TopicAvailability, 0, true, []byte("online")); err != nil {
		log.Printf("link: publish availability: %v", err)
	}
	if onUp != nil {
		onUp()
	}
}

// Tick drives the two polled fallback checks. Called from the cooperative
// scheduler loop; it never blocks, since connect attempts run on their own
// goroutine.
func (m *Manager) Tick(now time.Time) {
	m.mu.Lock()
	client := m.client
	sessDue := now.Sub(m.lastSessCheck) >= m.sessionInterval
	if sessDue {
		m.lastSessCheck = now
	}
	slowDue := now.Sub(m.lastSlowCheck) >= m.slowInterval
	if slowDue {
		m.lastSlowCheck = now
	}
	state := m.state
	m.mu.Unlock()

	// Session health check: the session layer can die without a disconnect
	// notification reaching the fast path. The two layers reconcile only
	// through the shared link state.
	if sessDue && state == Connected && !client.IsConnected() {
		log.Printf("link: session check failed, marking disconnected")
		m.mu.Lock()
		m.state = Disconnected
		m.mu.Unlock()
		m.requestReconnect("session check", false)
		return
	}

	// Slow fallback: unconditional reconnect while down. This recovers
	// even when the fast path's retry state is stuck, so it bypasses the
	// in-flight-attempt suppression.
	if slowDue && state != Connected {
		m.requestReconnect("slow fallback", true)
	}
}

// requestReconnect issues a background connect attempt. When force is
// false an attempt already in flight suppresses a new one; the slow
// fallback passes force=true so a hung attempt cannot wedge recovery.
func (m *Manager) requestReconnect(reason string, force bool) {
	m.mu.Lock()
	if m.state == Connected {
		m.mu.Unlock()
		return
	}
	if m.connecting && !force {
		m.mu.Unlock()
		return
	}
	m.connecting = true
	m.state = Connecting
	m.reconnects++
	client := m.client
	m.mu.Unlock()

	log.Printf("link: reconnect requested (%s)", reason)
	go func() {
		err := client.Connect()
		m.mu.Lock()
		m.connecting = false
		if err != nil && m.state == Connecting {
			m.state = Disconnected
		}
		m.mu.Unlock()
		if err != nil {
			log.Printf("link: connect failed: %v", err)
		}
		// On success the collaborator invokes HandleConnected.
	}()
}
