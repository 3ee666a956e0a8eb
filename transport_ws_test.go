package mqtt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startEchoServer(t *testing.T) string {
	t.Helper()

	upgrader := websocket.Upgrader{
		Subprotocols: []string{WebSocketSubprotocol},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(messageType, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSTransportRoundTrip(t *testing.T) {
	addr := startEchoServer(t)

	transport, err := NewWSDialer().Dial(context.Background(), addr)
	require.NoError(t, err)
	defer transport.Close()

	frame := []byte{0xC0, 0x00}
	require.NoError(t, transport.WriteMessage(frame))

	got, err := transport.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, frame, got)
}

func TestWSTransportRejectsTextMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte("hello"))

		// Keep the connection open until the client is done.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	addr := "ws" + strings.TrimPrefix(srv.URL, "http")
	transport, err := NewWSDialer().Dial(context.Background(), addr)
	require.NoError(t, err)
	defer transport.Close()

	_, err = transport.ReadMessage()
	assert.ErrorIs(t, err, ErrNonBinaryMessage)
}

func TestWSDialerConnectionRefused(t *testing.T) {
	_, err := NewWSDialer().Dial(context.Background(), "ws://127.0.0.1:1/mqtt")
	assert.Error(t, err)
}

func TestWSDialerBadProxyURL(t *testing.T) {
	dialer := NewWSDialer()
	dialer.Proxy = "socks5://\x00bad"

	_, err := dialer.Dial(context.Background(), "ws://example.invalid/mqtt")
	assert.Error(t, err)
}

// TestClientOverWebSocket drives a full handshake and publish against a
// minimal in-process broker.
func TestClientOverWebSocket(t *testing.T) {
	upgrader := websocket.Upgrader{
		Subprotocols: []string{WebSocketSubprotocol},
	}

	frames := make(chan []byte, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frames <- data

			if len(data) > 0 && PacketType(data[0]>>4) == PacketCONNECT {
				_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0x20, 0x02, 0x00, 0x00})
			}
		}
	}))
	defer srv.Close()

	addr := "ws" + strings.TrimPrefix(srv.URL, "http")

	client, err := Dial(context.Background(), addr, WithClientID("ws-test"), WithKeepAlive(0))
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.IsConnected())

	connect := <-frames
	assert.Equal(t, byte(0x10), connect[0])

	token, err := client.Publish(&Message{Topic: "t", Payload: []byte("p")})
	require.NoError(t, err)
	require.NoError(t, token.Wait(context.Background()))

	publish := <-frames
	assert.Equal(t, byte(0x30), publish[0])
}
