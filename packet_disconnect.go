package mqtt

import "io"

// DisconnectPacket represents an MQTT DISCONNECT packet, the client's
// graceful goodbye. It is a fixed two-byte packet with no body.
type DisconnectPacket struct{}

// Type returns the packet type.
func (p *DisconnectPacket) Type() PacketType { return PacketDISCONNECT }

// Encode writes the packet to the writer.
func (p *DisconnectPacket) Encode(w io.Writer) (int, error) {
	return writePacketBytes(w, PacketDISCONNECT, 0x00, nil)
}

// Validate validates the packet contents.
func (p *DisconnectPacket) Validate() error { return nil }
