package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Client is an MQTT 3.1.1 client over a message-framed transport. It layers
// request correlation, subscription routing and message delivery on top of a
// Conn. All methods are safe for concurrent use.
type Client struct {
	conn    *Conn
	options *clientOptions
	logger  logrus.FieldLogger

	mu            sync.Mutex
	closed        bool
	pendingPubs   map[uint16]*Token
	pendingSubs   map[uint16]*pendingSubscribe
	subscriptions map[string]MessageHandler
}

// pendingSubscribe tracks an in-flight SUBSCRIBE until its SUBACK arrives.
type pendingSubscribe struct {
	token   *SubscribeToken
	filters []string
}

// Dial connects to an MQTT broker at the given address using the configured
// dialer (a WebSocket dialer by default) and performs the MQTT handshake.
func Dial(ctx context.Context, address string, opts ...Option) (*Client, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	dialer := options.dialer
	if dialer == nil {
		dialer = NewWSDialer()
	}

	transport, err := dialer.Dial(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	client, err := connect(ctx, transport, options)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// Connect performs the MQTT handshake over an already established transport.
// The transport is owned by the client afterwards; Close releases it.
func Connect(ctx context.Context, transport Transport, opts ...Option) (*Client, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return connect(ctx, transport, options)
}

func connect(ctx context.Context, transport Transport, options *clientOptions) (*Client, error) {
	c := &Client{
		options:       options,
		logger:        options.logger,
		pendingPubs:   make(map[uint16]*Token),
		pendingSubs:   make(map[uint16]*pendingSubscribe),
		subscriptions: make(map[string]MessageHandler),
	}

	c.conn = newConn(transport, options, connHandlers{
		onPublish: c.handlePublish,
		onAck:     c.handleAck,
		onClose:   c.failPending,
	})

	if err := c.conn.start(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// IsConnected reports whether the connection is established.
func (c *Client) IsConnected() bool {
	return c.conn.State() == StateConnected
}

// ClientID returns the client identifier used for the connection.
func (c *Client) ClientID() string {
	return c.options.clientID
}

// Publish sends a message to the broker. At QoS 0 the returned token is
// already complete; at QoS 1 it completes when the matching PUBACK arrives.
// QoS 2 is not supported.
func (c *Client) Publish(msg *Message) (*Token, error) {
	if err := ValidateTopicName(msg.Topic); err != nil {
		return nil, err
	}

	if msg.QoS > QoS1 {
		return nil, fmt.Errorf("%w: publish supports QoS 0 and 1", ErrInvalidQoS)
	}

	if !c.IsConnected() {
		return nil, ErrNotConnected
	}

	pkt := &PublishPacket{
		Topic:   msg.Topic,
		Payload: msg.Payload,
		QoS:     msg.QoS,
		Retain:  msg.Retain,
	}

	token := newToken()

	if msg.QoS == QoS0 {
		if err := c.conn.writePacket(pkt); err != nil {
			return nil, err
		}

		token.complete(nil)
		return token, nil
	}

	pkt.MessageID = c.conn.nextMessageID()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnectionClosed
	}
	c.pendingPubs[pkt.MessageID] = token
	c.mu.Unlock()

	if err := c.conn.writePacket(pkt); err != nil {
		c.mu.Lock()
		delete(c.pendingPubs, pkt.MessageID)
		c.mu.Unlock()

		return nil, err
	}

	return token, nil
}

// Subscribe requests delivery of messages matching the topic filter at the
// given maximum QoS. Matching messages are passed to handler; a nil handler
// routes them to the OnMessage catch-all. The token completes when the
// SUBACK arrives and fails with ErrSubscriptionFailed if the broker rejects
// the filter.
func (c *Client) Subscribe(filter string, qos byte, handler MessageHandler) (*SubscribeToken, error) {
	if qos > QoS1 {
		return nil, fmt.Errorf("%w: subscribe supports QoS 0 and 1", ErrInvalidQoS)
	}

	return c.subscribe([]Subscription{{TopicFilter: filter, QoS: qos}}, handler)
}

// SubscribeMultiple subscribes to several topic filters in one SUBSCRIBE
// packet, all routed to the same handler. The SUBACK carries one return code
// per filter, in map iteration order as sent; inspect GrantedQoS on the
// token for per-filter results.
func (c *Client) SubscribeMultiple(filters map[string]byte, handler MessageHandler) (*SubscribeToken, error) {
	subs := make([]Subscription, 0, len(filters))
	for filter, qos := range filters {
		if qos > QoS1 {
			return nil, fmt.Errorf("%w: subscribe supports QoS 0 and 1", ErrInvalidQoS)
		}

		subs = append(subs, Subscription{TopicFilter: filter, QoS: qos})
	}

	return c.subscribe(subs, handler)
}

func (c *Client) subscribe(subs []Subscription, handler MessageHandler) (*SubscribeToken, error) {
	filters := make([]string, len(subs))
	for i, sub := range subs {
		if err := ValidateTopicFilter(sub.TopicFilter); err != nil {
			return nil, err
		}

		filters[i] = sub.TopicFilter
	}

	if !c.IsConnected() {
		return nil, ErrNotConnected
	}

	pkt := &SubscribePacket{
		MessageID:     c.conn.nextMessageID(),
		Subscriptions: subs,
	}

	if err := pkt.Validate(); err != nil {
		return nil, err
	}

	token := newSubscribeToken()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnectionClosed
	}
	c.pendingSubs[pkt.MessageID] = &pendingSubscribe{token: token, filters: filters}
	if handler != nil {
		for _, filter := range filters {
			c.subscriptions[filter] = handler
		}
	}
	c.mu.Unlock()

	if err := c.conn.writePacket(pkt); err != nil {
		c.mu.Lock()
		delete(c.pendingSubs, pkt.MessageID)
		if handler != nil {
			for _, filter := range filters {
				delete(c.subscriptions, filter)
			}
		}
		c.mu.Unlock()

		return nil, err
	}

	return token, nil
}

// Close shuts the client down. A best-effort DISCONNECT is sent when
// connected, the transport is closed and every operation still awaiting an
// acknowledgment fails with ErrConnectionClosed. Close is idempotent.
func (c *Client) Close() error {
	return c.conn.Close()
}

// handleAck resolves the pending operation matching an acknowledgment.
// Acknowledgments with no matching pending operation are logged and ignored.
func (c *Client) handleAck(pkt Packet) {
	switch p := pkt.(type) {
	case *PubackPacket:
		c.mu.Lock()
		token, ok := c.pendingPubs[p.MessageID]
		delete(c.pendingPubs, p.MessageID)
		c.mu.Unlock()

		if !ok {
			c.logger.WithField("message_id", p.MessageID).Debug("puback for unknown message id")
			return
		}

		token.complete(nil)

	case *SubackPacket:
		c.mu.Lock()
		pending, ok := c.pendingSubs[p.MessageID]
		delete(c.pendingSubs, p.MessageID)
		c.mu.Unlock()

		if !ok {
			c.logger.WithField("message_id", p.MessageID).Debug("suback for unknown message id")
			return
		}

		c.resolveSuback(pending, p)
	}
}

// resolveSuback completes a subscribe token from its SUBACK, dropping the
// handlers of any filter the broker rejected.
func (c *Client) resolveSuback(pending *pendingSubscribe, pkt *SubackPacket) {
	var failed []string

	for i, code := range pkt.GrantedQoS {
		if code == SubackFailure && i < len(pending.filters) {
			failed = append(failed, pending.filters[i])
		}
	}

	if len(failed) > 0 {
		c.mu.Lock()
		for _, filter := range failed {
			delete(c.subscriptions, filter)
		}
		c.mu.Unlock()

		c.logger.WithField("filters", failed).Warn("subscription rejected")
		pending.token.completeGranted(pkt.GrantedQoS, fmt.Errorf("%w: %v", ErrSubscriptionFailed, failed))
		return
	}

	pending.token.completeGranted(pkt.GrantedQoS, nil)
}

// handlePublish routes an incoming message to every subscription handler
// whose filter matches the topic, or to the OnMessage catch-all when none
// match.
func (c *Client) handlePublish(pkt *PublishPacket) {
	msg := pkt.ToMessage()

	c.mu.Lock()
	var handlers []MessageHandler
	for filter, handler := range c.subscriptions {
		if TopicMatch(filter, msg.Topic) {
			handlers = append(handlers, handler)
		}
	}
	c.mu.Unlock()

	if len(handlers) == 0 {
		if c.options.onMessage != nil {
			c.options.onMessage(msg)
		}
		return
	}

	for _, handler := range handlers {
		handler(msg)
	}
}

// failPending fails every in-flight operation when the connection closes.
// Each token completes at most once, so a token resolved by an
// acknowledgment racing with close keeps its original outcome.
func (c *Client) failPending(cause error) {
	c.mu.Lock()
	c.closed = true
	pubs := c.pendingPubs
	subs := c.pendingSubs
	c.pendingPubs = make(map[uint16]*Token)
	c.pendingSubs = make(map[uint16]*pendingSubscribe)
	c.mu.Unlock()

	if len(pubs)+len(subs) > 0 {
		c.logger.WithFields(logrus.Fields{
			"publishes":  len(pubs),
			"subscribes": len(subs),
		}).Debug("failing pending operations")
	}

	err := ErrConnectionClosed
	if cause != nil && !errors.Is(cause, ErrConnectionClosed) {
		err = fmt.Errorf("%w: %v", ErrConnectionClosed, cause)
	}

	for _, token := range pubs {
		token.complete(err)
	}

	for _, pending := range subs {
		pending.token.complete(err)
	}
}
