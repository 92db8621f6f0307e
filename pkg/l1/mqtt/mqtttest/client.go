// Package mqtttest provides an in-memory paho.Client for tests.
package mqtttest

import (
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Message is a recorded publish.
type Message struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  []byte
}

// Client records publishes and subscriptions without a broker.
type Client struct {
	ConnectErr error

	lock         sync.Mutex
	connected    bool
	published    []Message
	subscribed   []string
	unsubscribed []string
	pubCh        chan Message
}

// NewClient creates a Client. Every publish is also sent to the channel
// returned by Published.
func NewClient() *Client {
	return &Client{pubCh: make(chan Message, 64)}
}

// Published returns the channel receiving publishes.
func (c *Client) Published() <-chan Message {
	return c.pubCh
}

// Messages returns all publishes so far.
func (c *Client) Messages() []Message {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]Message(nil), c.published...)
}

// Subscribed returns subscribed topic filters in order.
func (c *Client) Subscribed() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string(nil), c.subscribed...)
}

// Unsubscribed returns unsubscribed topic filters in order.
func (c *Client) Unsubscribed() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string(nil), c.unsubscribed...)
}

// IsConnected implements paho.Client.
func (c *Client) IsConnected() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.connected
}

// IsConnectionOpen implements paho.Client.
func (c *Client) IsConnectionOpen() bool {
	return c.IsConnected()
}

// Connect implements paho.Client.
func (c *Client) Connect() paho.Token {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.ConnectErr != nil {
		return &errToken{err: c.ConnectErr}
	}
	c.connected = true
	return &paho.DummyToken{}
}

// Disconnect implements paho.Client.
func (c *Client) Disconnect(quiesce uint) {
	c.lock.Lock()
	c.connected = false
	c.lock.Unlock()
}

// Publish implements paho.Client.
func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	}
	msg := Message{Topic: topic, QoS: qos, Retained: retained, Payload: data}
	c.lock.Lock()
	c.published = append(c.published, msg)
	c.lock.Unlock()
	select {
	case c.pubCh <- msg:
	default:
	}
	return &paho.DummyToken{}
}

// Subscribe implements paho.Client.
func (c *Client) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	c.lock.Lock()
	c.subscribed = append(c.subscribed, topic)
	c.lock.Unlock()
	return &paho.DummyToken{}
}

// SubscribeMultiple implements paho.Client.
func (c *Client) SubscribeMultiple(filters map[string]byte, callback paho.MessageHandler) paho.Token {
	c.lock.Lock()
	for topic := range filters {
		c.subscribed = append(c.subscribed, topic)
	}
	c.lock.Unlock()
	return &paho.DummyToken{}
}

// Unsubscribe implements paho.Client.
func (c *Client) Unsubscribe(topics ...string) paho.Token {
	c.lock.Lock()
	c.unsubscribed = append(c.unsubscribed, topics...)
	c.lock.Unlock()
	return &paho.DummyToken{}
}

// AddRoute implements paho.Client.
func (c *Client) AddRoute(topic string, callback paho.MessageHandler) {}

// OptionsReader implements paho.Client.
func (c *Client) OptionsReader() paho.ClientOptionsReader {
	return paho.ClientOptionsReader{}
}

type errToken struct {
	paho.DummyToken
	err error
}

func (t *errToken) Error() error { return t.err }
