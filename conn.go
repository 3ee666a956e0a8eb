package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ConnState is the lifecycle state of a Conn.
type ConnState int32

const (
	// StateIdle is the state before the CONNECT packet is sent.
	StateIdle ConnState = iota
	// StateAwaitingConnack means CONNECT was sent and the broker has not
	// replied yet.
	StateAwaitingConnack
	// StateConnected means the broker accepted the connection.
	StateConnected
	// StateClosed is the terminal state. A closed Conn cannot be reused.
	StateClosed
)

// String returns the state name.
func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingConnack:
		return "awaiting_connack"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// connHandlers receive decoded packets and lifecycle notifications from the
// read loop. Calls are made from the read loop goroutine, in packet order.
type connHandlers struct {
	onPublish func(*PublishPacket)
	onAck     func(Packet)
	onClose   func(error)
}

// Conn drives a single MQTT connection over a message-framed transport. It
// owns the handshake, the read loop, keep-alive pings and the QoS 1 receive
// acknowledgments. Session bookkeeping lives in Client.
type Conn struct {
	transport Transport
	options   *clientOptions
	logger    logrus.FieldLogger
	handlers  connHandlers

	state atomic.Int32

	writeMu sync.Mutex

	// read loop state, touched only by readLoop
	buf []byte

	msgID uint32

	connackCh chan error
	readDone  chan struct{}

	// keepAliveCtx is created up front and cancelled on close, so the
	// keepalive goroutine can be started from the read loop without racing
	// a concurrent Close.
	keepAliveCtx    context.Context
	keepAliveCancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// newConn wraps an established transport. Call start to perform the
// handshake.
func newConn(transport Transport, options *clientOptions, handlers connHandlers) *Conn {
	ctx, cancel := context.WithCancel(context.Background())

	return &Conn{
		transport:       transport,
		options:         options,
		logger:          options.logger,
		handlers:        handlers,
		connackCh:       make(chan error, 1),
		readDone:        make(chan struct{}),
		keepAliveCtx:    ctx,
		keepAliveCancel: cancel,
	}
}

// State returns the current connection state.
func (c *Conn) State() ConnState {
	return ConnState(c.state.Load())
}

// start sends CONNECT and blocks until the broker replies with CONNACK, the
// context expires, or the transport fails. On a refused connection the
// returned error wraps the matching refusal sentinel and carries the return
// code as a ConnectError.
func (c *Conn) start(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateAwaitingConnack)) {
		return ErrNotConnected
	}

	connect := &ConnectPacket{
		ClientID:     c.options.clientID,
		CleanSession: c.options.cleanSession,
		KeepAlive:    c.options.keepAlive,
		Username:     c.options.username,
		Password:     c.options.password,
	}

	if c.options.willTopic != "" {
		connect.WillFlag = true
		connect.WillTopic = c.options.willTopic
		connect.WillPayload = c.options.willPayload
		connect.WillQoS = c.options.willQoS
		connect.WillRetain = c.options.willRetain
	}

	if err := connect.Validate(); err != nil {
		c.close(err, false)
		return err
	}

	go c.readLoop()

	if err := c.writePacket(connect); err != nil {
		c.close(err, false)
		return fmt.Errorf("send connect: %w", err)
	}

	select {
	case err := <-c.connackCh:
		if err != nil {
			c.close(err, false)
			return err
		}
		return nil

	case <-ctx.Done():
		c.close(ctx.Err(), false)
		return ctx.Err()
	}
}

// writePacket encodes and sends a packet as a single transport message.
func (c *Conn) writePacket(pkt Packet) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var buf writeBuffer
	n, err := pkt.Encode(&buf)
	if err != nil {
		return fmt.Errorf("encode %s: %w", pkt.Type(), err)
	}

	if c.options.writeTimeout > 0 {
		if wd, ok := c.transport.(interface{ SetWriteDeadline(time.Time) error }); ok {
			_ = wd.SetWriteDeadline(time.Now().Add(c.options.writeTimeout))
		}
	}

	if err := c.transport.WriteMessage(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", pkt.Type(), err)
	}

	c.options.metrics.observeSent(pkt.Type(), n)
	c.logger.WithFields(logrus.Fields{"type": pkt.Type().String(), "bytes": n}).Debug("packet sent")

	return nil
}

// nextMessageID returns the next message identifier, wrapping from 65535
// back to 1. Zero is never returned.
func (c *Conn) nextMessageID() uint16 {
	for {
		id := uint16(atomic.AddUint32(&c.msgID, 1))
		if id != 0 {
			return id
		}
	}
}

// readLoop reads transport messages, reassembles partial frames and
// dispatches decoded packets in order.
func (c *Conn) readLoop() {
	defer close(c.readDone)

	for {
		data, err := c.transport.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		c.buf = append(c.buf, data...)

		packets, rest, err := DecodeAll(c.buf)

		// The remainder aliases the working buffer, as do the payload
		// slices of decoded PUBLISH packets. Copy it out so the next
		// append cannot clobber either.
		if len(rest) > 0 {
			c.buf = append([]byte(nil), rest...)
		} else {
			c.buf = nil
		}

		for _, pkt := range packets {
			c.dispatch(pkt)
		}

		if err != nil {
			c.logger.WithError(err).Error("malformed packet")
			c.failConnack(err)
			c.close(err, false)
			return
		}
	}
}

// handleReadError resolves a transport read failure: a silent return when the
// connection is closing, a connection-lost event otherwise.
func (c *Conn) handleReadError(err error) {
	if c.State() == StateClosed {
		return
	}

	c.logger.WithError(err).Warn("transport read failed")
	c.options.metrics.observeConnectionLost()

	c.failConnack(fmt.Errorf("transport: %w", err))
	c.closeWith(newConnectionLostError(err), false)
}

// failConnack unblocks a pending start call, if any.
func (c *Conn) failConnack(err error) {
	select {
	case c.connackCh <- err:
	default:
	}
}

func (c *Conn) dispatch(pkt Packet) {
	c.options.metrics.observeReceived(pkt.Type(), packetSize(pkt))

	switch p := pkt.(type) {
	case *ConnackPacket:
		c.handleConnack(p)

	case *PublishPacket:
		c.handlePublish(p)

	case *PubackPacket:
		c.handlers.onAck(p)

	case *SubackPacket:
		c.handlers.onAck(p)

	case *PingrespPacket:
		c.logger.Debug("pingresp received")

	default:
		c.logger.WithField("type", pkt.Type().String()).Warn("unexpected packet")
	}
}

func (c *Conn) handleConnack(pkt *ConnackPacket) {
	if pkt.ReturnCode != ConnectionAccepted {
		c.failConnack(newConnectError(pkt.ReturnCode))
		return
	}

	if !c.state.CompareAndSwap(int32(StateAwaitingConnack), int32(StateConnected)) {
		c.logger.Warn("connack outside handshake")
		return
	}

	c.logger.WithField("session_present", pkt.SessionPresent).Info("connected")
	c.startKeepAlive()
	c.emit(newConnectedEvent(pkt.SessionPresent))
	c.failConnack(nil)
}

// handlePublish acknowledges QoS 1 messages before surfacing them, so the
// broker never sees a message delivered but unacknowledged. QoS 2 messages
// are surfaced without the PUBREC exchange, so the broker may redeliver.
func (c *Conn) handlePublish(pkt *PublishPacket) {
	if pkt.QoS == QoS2 {
		c.logger.WithField("topic", pkt.Topic).Debug("qos 2 publish, no receipt sent")
	}

	if pkt.QoS == QoS1 && pkt.MessageID != 0 {
		if err := c.writePacket(&PubackPacket{MessageID: pkt.MessageID}); err != nil {
			c.logger.WithError(err).Warn("puback failed")
		}
	}

	c.handlers.onPublish(pkt)
}

// startKeepAlive spawns the ping loop. A keep-alive of zero disables it.
func (c *Conn) startKeepAlive() {
	if c.options.keepAlive == 0 {
		return
	}

	go c.keepAliveLoop(c.keepAliveCtx)
}

// keepAliveLoop sends PINGREQ at half the keep-alive interval so a reply
// always arrives before the broker's deadline.
func (c *Conn) keepAliveLoop(ctx context.Context) {
	interval := time.Duration(c.options.keepAlive) * time.Second / 2
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if c.State() != StateConnected {
				continue
			}

			if err := c.writePacket(&PingreqPacket{}); err != nil {
				c.logger.WithError(err).Warn("pingreq failed")
			}
		}
	}
}

func (c *Conn) emit(event error) {
	if c.options.onEvent != nil {
		c.options.onEvent(event)
	}
}

// Close shuts the connection down: a best-effort DISCONNECT when connected,
// then the transport is closed and every pending operation is failed.
// Close is idempotent.
func (c *Conn) Close() error {
	return c.close(ErrConnectionClosed, true)
}

func (c *Conn) close(cause error, sendDisconnect bool) error {
	c.closeWith(cause, sendDisconnect)
	return c.closeErr
}

func (c *Conn) closeWith(cause error, sendDisconnect bool) {
	c.closeOnce.Do(func() {
		wasConnected := c.state.Swap(int32(StateClosed)) == int32(StateConnected)

		c.keepAliveCancel()

		if wasConnected && sendDisconnect {
			if err := c.writePacket(&DisconnectPacket{}); err != nil {
				c.logger.WithError(err).Debug("disconnect not sent")
			}
		}

		c.closeErr = c.transport.Close()

		c.handlers.onClose(cause)

		if errors.Is(cause, ErrConnectionClosed) {
			c.emit(ErrDisconnected)
		} else {
			c.emit(cause)
		}

		c.logger.Info("connection closed")
	})
}

// packetSize returns the encoded size of a decoded packet for accounting.
func packetSize(pkt Packet) int {
	switch p := pkt.(type) {
	case *ConnackPacket:
		return 4
	case *PublishPacket:
		body := 2 + len(p.Topic) + len(p.Payload)
		if p.QoS > QoS0 {
			body += 2
		}
		return body + 1 + varintSize(uint32(body))
	case *PubackPacket:
		return 4
	case *SubackPacket:
		body := 2 + len(p.GrantedQoS)
		return body + 1 + varintSize(uint32(body))
	case *PingrespPacket:
		return 2
	default:
		return 2
	}
}
