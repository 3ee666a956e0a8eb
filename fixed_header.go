package mqtt

import (
	"errors"
	"fmt"
)

// PacketType represents an MQTT control packet type.
type PacketType byte

// MQTT 3.1.1 control packet types.
const (
	PacketCONNECT    PacketType = 1
	PacketCONNACK    PacketType = 2
	PacketPUBLISH    PacketType = 3
	PacketPUBACK     PacketType = 4
	PacketSUBSCRIBE  PacketType = 8
	PacketSUBACK     PacketType = 9
	PacketPINGREQ    PacketType = 12
	PacketPINGRESP   PacketType = 13
	PacketDISCONNECT PacketType = 14
)

// String returns the string representation of the packet type.
func (p PacketType) String() string {
	switch p {
	case PacketCONNECT:
		return "CONNECT"
	case PacketCONNACK:
		return "CONNACK"
	case PacketPUBLISH:
		return "PUBLISH"
	case PacketPUBACK:
		return "PUBACK"
	case PacketSUBSCRIBE:
		return "SUBSCRIBE"
	case PacketSUBACK:
		return "SUBACK"
	case PacketPINGREQ:
		return "PINGREQ"
	case PacketPINGRESP:
		return "PINGRESP"
	case PacketDISCONNECT:
		return "DISCONNECT"
	default:
		return "UNKNOWN"
	}
}

// Fixed header errors.
var (
	ErrInvalidPacketType  = errors.New("invalid packet type")
	ErrInvalidPacketFlags = errors.New("invalid packet flags")
)

// FixedHeader is the two-to-five byte header that starts every MQTT control
// packet: a type/flags byte followed by the remaining length as a variable
// length integer.
type FixedHeader struct {
	PacketType      PacketType
	Flags           byte
	RemainingLength uint32
}

// encodeTo writes the fixed header into buf.
func (h *FixedHeader) encodeTo(buf *writeBuffer) error {
	buf.WriteByte(byte(h.PacketType)<<4 | (h.Flags & 0x0F))
	return buf.WriteVarint(h.RemainingLength)
}

// decodeFixedHeader reads a fixed header from cur. ErrShortBuffer from the
// cursor means the header itself is not complete yet. The reserved type
// values 0 and 15 are rejected here, before the remaining length is read.
func decodeFixedHeader(cur *readCursor) (FixedHeader, error) {
	var h FixedHeader

	first, err := cur.ReadByte()
	if err != nil {
		return h, err
	}
	h.PacketType = PacketType(first >> 4)
	h.Flags = first & 0x0F

	if h.PacketType == 0 || h.PacketType == 15 {
		return h, fmt.Errorf("%w: %d", ErrInvalidPacketType, h.PacketType)
	}

	length, err := cur.ReadVarint()
	if err != nil {
		return h, err
	}
	h.RemainingLength = length

	return h, nil
}

// size returns the encoded size of the fixed header in bytes.
func (h *FixedHeader) size() int {
	return 1 + varintSize(h.RemainingLength)
}
