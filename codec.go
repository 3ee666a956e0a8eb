package mqtt

import (
	"errors"
	"fmt"
)

// Codec errors.
var (
	// ErrIncompletePacket signals that the buffer does not yet hold a
	// complete packet. It is a flow-control condition, not a protocol
	// failure: retry once more bytes arrive.
	ErrIncompletePacket = errors.New("incomplete packet")

	// ErrUnknownPacketType is a fatal decode error: the fixed header names
	// a packet type this client does not decode.
	ErrUnknownPacketType = errors.New("unknown packet type")
)

// Decode decodes a single packet from the start of data. It returns the
// packet and the number of bytes consumed, or ErrIncompletePacket when data
// holds only a prefix of a packet. Decode never mutates data and keeps no
// state; callers retain unconsumed bytes themselves.
func Decode(data []byte) (Packet, int, error) {
	cur := newReadCursor(data)

	header, err := decodeFixedHeader(cur)
	if errors.Is(err, ErrShortBuffer) {
		// The type byte or the remaining-length varint continues past
		// the available bytes.
		return nil, 0, ErrIncompletePacket
	}
	if err != nil {
		return nil, 0, err
	}

	if cur.Remaining() < int(header.RemainingLength) {
		return nil, 0, ErrIncompletePacket
	}

	body, err := cur.ReadBytes(int(header.RemainingLength))
	if err != nil {
		return nil, 0, err
	}
	consumed := header.size() + int(header.RemainingLength)

	// Only the packet types a broker sends to a client are decodable.
	var packet interface {
		Packet
		decode(cur *readCursor, header FixedHeader) error
	}
	switch header.PacketType {
	case PacketCONNACK:
		packet = &ConnackPacket{}
	case PacketPUBLISH:
		packet = &PublishPacket{}
	case PacketPUBACK:
		packet = &PubackPacket{}
	case PacketSUBACK:
		packet = &SubackPacket{}
	case PacketPINGRESP:
		packet = &PingrespPacket{}
	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownPacketType, header.PacketType)
	}

	if err := packet.decode(newReadCursor(body), header); err != nil {
		if errors.Is(err, ErrShortBuffer) {
			// The body was sliced to the declared remaining length, so a
			// short read here is a lying length field, not missing bytes.
			err = fmt.Errorf("%s body shorter than remaining length: %w", header.PacketType, err)
		}
		return nil, 0, err
	}

	return packet, consumed, nil
}

// DecodeAll decodes as many complete packets as data holds, in order, and
// returns them together with the unconsumed remainder. The remainder is the
// continuation state for packets split across transport messages: append the
// next inbound chunk to it and call DecodeAll again. A non-nil error is
// fatal for the connection; the packets decoded before it are still
// returned.
func DecodeAll(data []byte) ([]Packet, []byte, error) {
	var packets []Packet
	offset := 0

	for offset < len(data) {
		packet, n, err := Decode(data[offset:])
		if errors.Is(err, ErrIncompletePacket) {
			break
		}
		if err != nil {
			return packets, data[offset:], err
		}
		packets = append(packets, packet)
		offset += n
	}

	return packets, data[offset:], nil
}
