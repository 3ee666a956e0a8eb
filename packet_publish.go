package mqtt

import "io"

// PublishPacket represents an MQTT PUBLISH packet.
type PublishPacket struct {
	// Topic is the topic name.
	Topic string

	// Payload is the application message, carried without a length prefix.
	Payload []byte

	// QoS is the Quality of Service level (0, 1 or 2).
	QoS byte

	// Retain marks the message as retained.
	Retain bool

	// Duplicate marks a redelivery.
	Duplicate bool

	// MessageID is the message identifier, present only when QoS > 0.
	MessageID uint16
}

// Type returns the packet type.
func (p *PublishPacket) Type() PacketType { return PacketPUBLISH }

// flags returns the fixed header flags: dup (bit 3), QoS (bits 1-2),
// retain (bit 0).
func (p *PublishPacket) flags() byte {
	var flags byte
	if p.Duplicate {
		flags |= 0x08
	}
	flags |= (p.QoS & 0x03) << 1
	if p.Retain {
		flags |= 0x01
	}
	return flags
}

// setFlags parses the fixed header flags.
func (p *PublishPacket) setFlags(flags byte) {
	p.Duplicate = flags&0x08 != 0
	p.QoS = (flags >> 1) & 0x03
	p.Retain = flags&0x01 != 0
}

// Encode writes the packet to the writer.
func (p *PublishPacket) Encode(w io.Writer) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	var buf writeBuffer
	if err := buf.WriteString(p.Topic); err != nil {
		return 0, err
	}
	if p.QoS > QoS0 {
		buf.WriteUint16(p.MessageID)
	}
	buf.Write(p.Payload)

	return writePacketBytes(w, PacketPUBLISH, p.flags(), buf.Bytes())
}

// decode reads the packet body. The payload is everything after the topic
// and optional message identifier, its length implied by the remaining
// length.
func (p *PublishPacket) decode(cur *readCursor, header FixedHeader) error {
	p.setFlags(header.Flags)
	if p.QoS > QoS2 {
		return ErrInvalidPacketFlags
	}

	topic, err := cur.ReadString()
	if err != nil {
		return err
	}
	p.Topic = topic

	if p.QoS > QoS0 {
		id, err := cur.ReadUint16()
		if err != nil {
			return err
		}
		p.MessageID = id
	}

	p.Payload = cur.ReadRest()
	return nil
}

// Validate validates the packet contents.
func (p *PublishPacket) Validate() error {
	if p.QoS > QoS2 {
		return ErrInvalidQoS
	}
	if p.QoS > QoS0 && p.MessageID == 0 {
		return ErrMessageIDMissing
	}
	if p.QoS == QoS0 && p.Duplicate {
		return ErrInvalidPacketFlags
	}
	return nil
}

// ToMessage converts the packet to an application Message.
func (p *PublishPacket) ToMessage() *Message {
	return &Message{
		Topic:     p.Topic,
		Payload:   p.Payload,
		QoS:       p.QoS,
		Retain:    p.Retain,
		Duplicate: p.Duplicate,
	}
}
