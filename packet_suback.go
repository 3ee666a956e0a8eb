package mqtt

import (
	"errors"
	"io"
)

// SubackFailure is the granted-QoS byte denoting a per-topic subscription
// failure.
const SubackFailure byte = 0x80

// SUBACK packet errors.
var ErrNoReturnCodes = errors.New("suback packet carries no return codes")

// SubackPacket represents an MQTT SUBACK packet.
type SubackPacket struct {
	// MessageID echoes the identifier of the acknowledged SUBSCRIBE.
	MessageID uint16

	// GrantedQoS holds one byte per subscribed topic: 0, 1 or 2 for the
	// granted level, SubackFailure for a rejected topic.
	GrantedQoS []byte
}

// Type returns the packet type.
func (p *SubackPacket) Type() PacketType { return PacketSUBACK }

// Encode writes the packet to the writer.
func (p *SubackPacket) Encode(w io.Writer) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	var buf writeBuffer
	buf.WriteUint16(p.MessageID)
	buf.Write(p.GrantedQoS)

	return writePacketBytes(w, PacketSUBACK, 0x00, buf.Bytes())
}

// decode reads the packet body: the message identifier, then one granted-QoS
// byte per topic until the body is exhausted.
func (p *SubackPacket) decode(cur *readCursor, header FixedHeader) error {
	if header.Flags != 0x00 {
		return ErrInvalidPacketFlags
	}

	id, err := cur.ReadUint16()
	if err != nil {
		return err
	}
	p.MessageID = id
	p.GrantedQoS = cur.ReadRest()

	return nil
}

// Failed reports whether any requested topic was rejected.
func (p *SubackPacket) Failed() bool {
	for _, code := range p.GrantedQoS {
		if code == SubackFailure {
			return true
		}
	}
	return false
}

// Validate validates the packet contents.
func (p *SubackPacket) Validate() error {
	if p.MessageID == 0 {
		return ErrMessageIDMissing
	}
	if len(p.GrantedQoS) == 0 {
		return ErrNoReturnCodes
	}
	return nil
}
