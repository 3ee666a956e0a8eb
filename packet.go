package mqtt

import "io"

// QoS levels.
const (
	QoS0 byte = 0 // at most once
	QoS1 byte = 1 // at least once
	QoS2 byte = 2 // exactly once (not supported for delivery by this client)
)

// Packet is the interface implemented by all MQTT control packets.
type Packet interface {
	// Type returns the packet type.
	Type() PacketType

	// Encode writes the complete packet, fixed header included, to the
	// writer. Returns the number of bytes written.
	Encode(w io.Writer) (int, error)

	// Validate validates the packet contents.
	Validate() error
}

// Message is an application message carried by a PUBLISH packet.
type Message struct {
	// Topic is the topic name the message is published to.
	Topic string

	// Payload is the application payload.
	Payload []byte

	// QoS is the delivery guarantee level (0, 1 or 2).
	QoS byte

	// Retain marks the message as retained by the broker.
	Retain bool

	// Duplicate is set on redeliveries of a QoS > 0 message.
	Duplicate bool
}

// writePacketBytes encodes the fixed header for body and writes both to w
// in a single call. Every packet Encode funnels through here.
func writePacketBytes(w io.Writer, pt PacketType, flags byte, body []byte) (int, error) {
	header := FixedHeader{
		PacketType:      pt,
		Flags:           flags,
		RemainingLength: uint32(len(body)),
	}

	var buf writeBuffer
	buf.grow(header.size() + len(body))
	if err := header.encodeTo(&buf); err != nil {
		return 0, err
	}
	buf.Write(body)

	return w.Write(buf.Bytes())
}
