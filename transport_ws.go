package mqtt

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/proxy"
)

// WebSocketSubprotocol is the subprotocol advertised during the WebSocket
// handshake, per the MQTT 3.1.1 WebSocket binding.
const WebSocketSubprotocol = "mqtt"

// ErrNonBinaryMessage is returned when the peer sends a text WebSocket
// message; MQTT over WebSocket uses binary frames only.
var ErrNonBinaryMessage = errors.New("non-binary websocket message")

// WSTransport carries MQTT packets over binary WebSocket messages.
type WSTransport struct {
	conn *websocket.Conn
}

// NewWSTransport wraps an established WebSocket connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

// ReadMessage returns the payload of the next binary message.
func (t *WSTransport) ReadMessage() ([]byte, error) {
	messageType, data, err := t.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if messageType != websocket.BinaryMessage {
		return nil, ErrNonBinaryMessage
	}
	return data, nil
}

// WriteMessage sends p as a single binary message.
func (t *WSTransport) WriteMessage(p []byte) error {
	return t.conn.WriteMessage(websocket.BinaryMessage, p)
}

// SetWriteDeadline bounds future writes on the connection.
func (t *WSTransport) SetWriteDeadline(deadline time.Time) error {
	return t.conn.SetWriteDeadline(deadline)
}

// Close closes the underlying WebSocket connection.
func (t *WSTransport) Close() error {
	return t.conn.Close()
}

// RemoteAddr returns the remote network address.
func (t *WSTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

// WSDialer connects to MQTT brokers over WebSocket.
type WSDialer struct {
	// Dialer is the underlying WebSocket dialer.
	Dialer *websocket.Dialer

	// Header is the HTTP header sent with the handshake.
	Header http.Header

	// Proxy is an optional proxy URL (e.g. socks5://host:1080) the
	// WebSocket connection is tunneled through.
	Proxy string
}

// NewWSDialer creates a WebSocket dialer advertising the mqtt subprotocol.
func NewWSDialer() *WSDialer {
	return &WSDialer{
		Dialer: &websocket.Dialer{
			Subprotocols:    []string{WebSocketSubprotocol},
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// NewWSDialerTLS creates a WebSocket dialer with an explicit TLS
// configuration for wss addresses. Certificate handling stays inside the
// dialer; the MQTT layers never see it.
func NewWSDialerTLS(config *tls.Config) *WSDialer {
	d := NewWSDialer()
	d.Dialer.TLSClientConfig = config
	return d
}

// Dial connects to the WebSocket address.
func (d *WSDialer) Dial(ctx context.Context, address string) (Transport, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	if d.Proxy != "" {
		proxyDialer, err := d.proxyDialer()
		if err != nil {
			return nil, err
		}
		dialer.NetDialContext = proxyDialer
	}

	conn, _, err := dialer.DialContext(ctx, address, d.Header)
	if err != nil {
		return nil, err
	}

	return NewWSTransport(conn), nil
}

// proxyDialer resolves the configured proxy URL into a dial function.
func (d *WSDialer) proxyDialer() (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	u, err := url.Parse(d.Proxy)
	if err != nil {
		return nil, err
	}

	pd, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, err
	}

	if cd, ok := pd.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return pd.Dial(network, addr)
	}, nil
}
