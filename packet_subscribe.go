package mqtt

import (
	"errors"
	"io"
)

// SUBSCRIBE packet errors.
var ErrNoSubscriptions = errors.New("subscribe packet carries no subscriptions")

// Subscription pairs a topic filter with a requested QoS level.
type Subscription struct {
	TopicFilter string
	QoS         byte
}

// SubscribePacket represents an MQTT SUBSCRIBE packet. The fixed header
// flags are always 0x02, the reserved value the protocol mandates.
type SubscribePacket struct {
	// MessageID correlates the packet to its SUBACK.
	MessageID uint16

	// Subscriptions is the ordered list of requested subscriptions.
	Subscriptions []Subscription
}

// Type returns the packet type.
func (p *SubscribePacket) Type() PacketType { return PacketSUBSCRIBE }

// Encode writes the packet to the writer.
func (p *SubscribePacket) Encode(w io.Writer) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	var buf writeBuffer
	buf.WriteUint16(p.MessageID)

	for _, sub := range p.Subscriptions {
		if err := buf.WriteString(sub.TopicFilter); err != nil {
			return 0, err
		}
		buf.WriteByte(sub.QoS & 0x03)
	}

	return writePacketBytes(w, PacketSUBSCRIBE, 0x02, buf.Bytes())
}

// Validate validates the packet contents.
func (p *SubscribePacket) Validate() error {
	if p.MessageID == 0 {
		return ErrMessageIDMissing
	}
	if len(p.Subscriptions) == 0 {
		return ErrNoSubscriptions
	}
	for _, sub := range p.Subscriptions {
		if sub.QoS > QoS2 {
			return ErrInvalidQoS
		}
	}
	return nil
}
