package mqtt

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MessageHandler receives messages published by the broker.
type MessageHandler func(msg *Message)

// clientOptions holds configuration for a Client.
type clientOptions struct {
	// Connection settings
	clientID     string
	username     string
	password     []byte
	keepAlive    uint16
	cleanSession bool

	// Will message
	willTopic   string
	willPayload []byte
	willRetain  bool
	willQoS     byte

	// Transport
	dialer       Dialer
	writeTimeout time.Duration

	// Handlers
	onMessage MessageHandler
	onEvent   EventHandler

	// Observability
	logger  logrus.FieldLogger
	metrics *Metrics
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() *clientOptions {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	return &clientOptions{
		clientID:     "mqtt-" + uuid.NewString()[:8],
		keepAlive:    60,
		cleanSession: true,
		writeTimeout: 5 * time.Second,
		logger:       discard,
	}
}

// Option configures a Client.
type Option func(*clientOptions)

// WithClientID sets the client identifier. When unset a random identifier is
// generated.
func WithClientID(id string) Option {
	return func(o *clientOptions) {
		o.clientID = id
	}
}

// WithCredentials sets the username and password for authentication.
func WithCredentials(username, password string) Option {
	return func(o *clientOptions) {
		o.username = username
		o.password = []byte(password)
	}
}

// WithKeepAlive sets the keep-alive interval in seconds. The client sends a
// ping at half this interval. Use 0 to disable keep-alive.
func WithKeepAlive(seconds uint16) Option {
	return func(o *clientOptions) {
		o.keepAlive = seconds
	}
}

// WithCleanSession sets whether to request a clean session on connect.
// Default is true.
func WithCleanSession(clean bool) Option {
	return func(o *clientOptions) {
		o.cleanSession = clean
	}
}

// WithWill sets the Will message the broker publishes if the client
// disconnects unexpectedly.
func WithWill(topic string, payload []byte, retain bool, qos byte) Option {
	return func(o *clientOptions) {
		o.willTopic = topic
		o.willPayload = payload
		o.willRetain = retain
		o.willQoS = qos
	}
}

// WithDialer sets the dialer used by Dial. Default is NewWSDialer().
func WithDialer(d Dialer) Option {
	return func(o *clientOptions) {
		o.dialer = d
	}
}

// WithWriteTimeout sets the timeout for write operations.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.writeTimeout = d
	}
}

// WithLogger sets the logger. By default all log output is discarded.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector for packet and byte counters.
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) {
		o.metrics = m
	}
}

// OnMessage sets the catch-all handler for messages that do not match any
// subscription handler.
func OnMessage(handler MessageHandler) Option {
	return func(o *clientOptions) {
		o.onMessage = handler
	}
}

// OnEvent sets the handler for lifecycle events and asynchronous errors.
func OnEvent(handler EventHandler) Option {
	return func(o *clientOptions) {
		o.onEvent = handler
	}
}
