package mqtt

import "io"

// PubackPacket represents an MQTT PUBACK packet, the acknowledgment of a
// QoS 1 PUBLISH.
type PubackPacket struct {
	// MessageID echoes the identifier of the acknowledged PUBLISH.
	MessageID uint16
}

// Type returns the packet type.
func (p *PubackPacket) Type() PacketType { return PacketPUBACK }

// Encode writes the packet to the writer.
func (p *PubackPacket) Encode(w io.Writer) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	var buf writeBuffer
	buf.WriteUint16(p.MessageID)

	return writePacketBytes(w, PacketPUBACK, 0x00, buf.Bytes())
}

// decode reads the packet body.
func (p *PubackPacket) decode(cur *readCursor, header FixedHeader) error {
	if header.Flags != 0x00 {
		return ErrInvalidPacketFlags
	}

	id, err := cur.ReadUint16()
	if err != nil {
		return err
	}
	p.MessageID = id
	return nil
}

// Validate validates the packet contents.
func (p *PubackPacket) Validate() error {
	if p.MessageID == 0 {
		return ErrMessageIDMissing
	}
	return nil
}
