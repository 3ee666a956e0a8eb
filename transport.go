package mqtt

import "context"

// Transport is a message-oriented byte transport carrying MQTT packets.
// Messages are opaque byte chunks with no alignment guarantee: a single
// message may hold several packets, a fraction of one, or both. The decoder
// reassembles packets across message boundaries.
//
// The connection state machine calls ReadMessage from a single goroutine
// and serializes all WriteMessage calls, so implementations need no
// internal locking.
type Transport interface {
	// ReadMessage blocks until the next message arrives and returns its
	// payload. It returns an error once the transport fails or closes.
	ReadMessage() ([]byte, error)

	// WriteMessage sends a single binary message.
	WriteMessage(p []byte) error

	// Close closes the transport. Pending and future ReadMessage calls
	// return an error.
	Close() error
}

// Dialer establishes transports to MQTT brokers.
type Dialer interface {
	// Dial connects to the address with the given context.
	Dial(ctx context.Context, address string) (Transport, error)
}
