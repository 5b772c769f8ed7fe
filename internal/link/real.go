package link

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// RealClient wraps a paho MQTT client. Paho's own auto-reconnect is
// disabled: recovery belongs to the resilience manager's fast and slow
// paths, not the collaborator.
type RealClient struct {
	client paho.Client
}

// NewRealClient builds a client for the given broker, wired to the
// manager's notification handlers. The will message marks the device
// offline if the broker loses us without a clean disconnect.
func NewRealClient(broker, clientID string, onConnect func(), onLost func(error)) *RealClient {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(false).
		SetConnectTimeout(10 * time.Second).
		SetKeepAlive(60 * time.Second).
		SetWill(TopicAvailability, "offline", 0, true).
		SetOnConnectHandler(func(paho.Client) { onConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) { onLost(err) })

	return &RealClient{client: paho.NewClient(opts)}
}

// Connect establishes transport and session. Blocks the calling goroutine
// until the attempt completes or the connect timeout fires.
func (c *RealClient) Connect() error {
	token := c.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}

// Publish sends a payload on the established session.
func (c *RealClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Subscribe registers a handler at QoS 0.
func (c *RealClient) Subscribe(topic string, handler func(payload []byte)) error {
	token := c.client.Subscribe(topic, 0, func(_ paho.Client, msg paho.Message) {
		handler(msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

// IsConnected reports the session layer's view of connectivity.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnected()
}

// Disconnect tears the session down, allowing 1s for in-flight work.
func (c *RealClient) Disconnect() {
	c.client.Disconnect(1000)
}
