package mqtt

import (
	"errors"
	"io"
)

// ConnackCode is the CONNACK return code.
type ConnackCode byte

// CONNACK return codes defined by MQTT 3.1.1.
const (
	ConnectionAccepted          ConnackCode = 0
	ErrCodeUnacceptableProtocol ConnackCode = 1
	ErrCodeIdentifierRejected   ConnackCode = 2
	ErrCodeServerUnavailable    ConnackCode = 3
	ErrCodeBadCredentials       ConnackCode = 4
	ErrCodeNotAuthorized        ConnackCode = 5
)

// String returns a human readable description of the return code.
func (c ConnackCode) String() string {
	switch c {
	case ConnectionAccepted:
		return "connection accepted"
	case ErrCodeUnacceptableProtocol:
		return "unacceptable protocol version"
	case ErrCodeIdentifierRejected:
		return "identifier rejected"
	case ErrCodeServerUnavailable:
		return "server unavailable"
	case ErrCodeBadCredentials:
		return "bad user name or password"
	case ErrCodeNotAuthorized:
		return "not authorized"
	default:
		return "unknown return code"
	}
}

// CONNACK packet errors.
var ErrInvalidConnackFlags = errors.New("invalid CONNACK flags")

// ConnackPacket represents an MQTT CONNACK packet.
type ConnackPacket struct {
	// SessionPresent indicates a session exists from a previous connection.
	SessionPresent bool

	// ReturnCode is the connection result.
	ReturnCode ConnackCode
}

// Type returns the packet type.
func (p *ConnackPacket) Type() PacketType { return PacketCONNACK }

// Encode writes the packet to the writer.
func (p *ConnackPacket) Encode(w io.Writer) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	var buf writeBuffer
	var ackFlags byte
	if p.SessionPresent {
		ackFlags = 0x01
	}
	buf.WriteByte(ackFlags)
	buf.WriteByte(byte(p.ReturnCode))

	return writePacketBytes(w, PacketCONNACK, 0x00, buf.Bytes())
}

// decode reads the packet body.
func (p *ConnackPacket) decode(cur *readCursor, header FixedHeader) error {
	if header.Flags != 0x00 {
		return ErrInvalidPacketFlags
	}

	ackFlags, err := cur.ReadByte()
	if err != nil {
		return err
	}
	if ackFlags&0xFE != 0 {
		return ErrInvalidConnackFlags
	}
	p.SessionPresent = ackFlags&0x01 != 0

	code, err := cur.ReadByte()
	if err != nil {
		return err
	}
	p.ReturnCode = ConnackCode(code)

	return nil
}

// Validate validates the packet contents.
func (p *ConnackPacket) Validate() error {
	if p.ReturnCode != ConnectionAccepted && p.SessionPresent {
		return ErrInvalidConnackFlags
	}
	return nil
}
