package link

import "sync"

// Message records a single published message.
type Message struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  []byte
}

// FakeClient is a test double for the transport/session collaborator.
type FakeClient struct {
	mu        sync.Mutex
	connected bool

	// ConnectError, if set, will be returned by Connect.
	ConnectError error

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// SubscribeError, if set, will be returned by Subscribe.
	SubscribeError error

	// OnConnect, if set, is invoked by a successful Connect. Wire it to
	// Manager.HandleConnected to mirror the real collaborator's connected
	// notification.
	OnConnect func()

	connectCalls int
	published    []Message
	subs         map[string]func(payload []byte)
}

// NewFakeClient creates a disconnected FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{subs: make(map[string]func(payload []byte))}
}

// Connect records the attempt and, on success, marks the session
// connected and fires the OnConnect notification.
func (f *FakeClient) Connect() error {
	f.mu.Lock()
	f.connectCalls++
	if f.ConnectError != nil {
		err := f.ConnectError
		f.mu.Unlock()
		return err
	}
	f.connected = true
	onConnect := f.OnConnect
	f.mu.Unlock()

	if onConnect != nil {
		onConnect()
	}
	return nil
}

// Publish records the message.
func (f *FakeClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	f.published = append(f.published, Message{Topic: topic, QoS: qos, Retained: retained, Payload: cp})
	return nil
}

// Subscribe records the handler.
func (f *FakeClient) Subscribe(topic string, handler func(payload []byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubscribeError != nil {
		return f.SubscribeError
	}
	f.subs[topic] = handler
	return nil
}

// IsConnected reports the scripted session state.
func (f *FakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// Disconnect marks the session down.
func (f *FakeClient) Disconnect() {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
}

// SetConnected scripts the session layer's view without a notification,
// simulating a session that died silently.
func (f *FakeClient) SetConnected(connected bool) {
	f.mu.Lock()
	f.connected = connected
	f.mu.Unlock()
}

// ConnectCalls returns how many times Connect was invoked.
func (f *FakeClient) ConnectCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connectCalls
}

// Published returns a copy of all recorded messages.
func (f *FakeClient) Published() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.published))
	copy(out, f.published)
	return out
}

// PublishedTo returns recorded messages for one topic.
func (f *FakeClient) PublishedTo(topic string) []Message {
	var out []Message
	for _, m := range f.Published() {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// Deliver invokes the subscribed handler for a topic, simulating an
// inbound message from the broker.
func (f *FakeClient) Deliver(topic string, payload []byte) bool {
	f.mu.Lock()
	handler, ok := f.subs[topic]
	f.mu.Unlock()
	if !ok {
		return false
	}
	handler(payload)
	return true
}

// Subscribed reports whether a handler is registered for the topic.
func (f *FakeClient) Subscribed(topic string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.subs[topic]
	return ok
}
