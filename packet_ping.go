package mqtt

import "io"

// PingreqPacket represents an MQTT PINGREQ packet, a fixed two-byte
// keepalive probe.
type PingreqPacket struct{}

// Type returns the packet type.
func (p *PingreqPacket) Type() PacketType { return PacketPINGREQ }

// Encode writes the packet to the writer.
func (p *PingreqPacket) Encode(w io.Writer) (int, error) {
	return writePacketBytes(w, PacketPINGREQ, 0x00, nil)
}

// Validate validates the packet contents.
func (p *PingreqPacket) Validate() error { return nil }

// PingrespPacket represents an MQTT PINGRESP packet.
type PingrespPacket struct{}

// Type returns the packet type.
func (p *PingrespPacket) Type() PacketType { return PacketPINGRESP }

// Encode writes the packet to the writer.
func (p *PingrespPacket) Encode(w io.Writer) (int, error) {
	return writePacketBytes(w, PacketPINGRESP, 0x00, nil)
}

// decode reads the (empty) packet body.
func (p *PingrespPacket) decode(_ *readCursor, header FixedHeader) error {
	if header.Flags != 0x00 {
		return ErrInvalidPacketFlags
	}
	return nil
}

// Validate validates the packet contents.
func (p *PingrespPacket) Validate() error { return nil }
