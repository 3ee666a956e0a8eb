package mqtt

import (
	"errors"
	"io"
)

// CONNECT packet constants.
const (
	protocolName  = "MQTT"
	protocolLevel = 4 // MQTT 3.1.1
)

// Connect flag bit positions.
const (
	connectFlagCleanSession = 0x02
	connectFlagWill         = 0x04
	connectFlagWillRetain   = 0x20
	connectFlagPassword     = 0x40
	connectFlagUsername     = 0x80
)

// CONNECT packet errors.
var (
	ErrInvalidWill      = errors.New("invalid will configuration")
	ErrPasswordNoUser   = errors.New("password set without username")
	ErrClientIDTooLong  = errors.New("client ID too long")
	ErrInvalidQoS       = errors.New("invalid QoS level")
	ErrMessageIDMissing = errors.New("message identifier required for QoS > 0")
)

// ConnectPacket represents an MQTT CONNECT packet. The client only ever
// sends CONNECT, so the packet has no decoder.
type ConnectPacket struct {
	// ClientID is the client identifier.
	ClientID string

	// CleanSession requests a session without stored state.
	CleanSession bool

	// KeepAlive is the keep alive interval in seconds.
	KeepAlive uint16

	// Username for authentication. Empty means absent.
	Username string

	// Password for authentication. Nil means absent.
	Password []byte

	// Will message configuration.
	WillFlag    bool
	WillTopic   string
	WillPayload []byte
	WillQoS     byte
	WillRetain  bool
}

// Type returns the packet type.
func (p *ConnectPacket) Type() PacketType { return PacketCONNECT }

// connectFlags returns the connect flags byte. Presence bits mirror the
// payload fields appended in Encode.
func (p *ConnectPacket) connectFlags() byte {
	var flags byte

	if p.CleanSession {
		flags |= connectFlagCleanSession
	}

	if p.WillFlag {
		flags |= connectFlagWill
		flags |= (p.WillQoS & 0x03) << 3
		if p.WillRetain {
			flags |= connectFlagWillRetain
		}
	}

	if p.Password != nil {
		flags |= connectFlagPassword
	}

	if p.Username != "" {
		flags |= connectFlagUsername
	}

	return flags
}

// Encode writes the packet to the writer.
func (p *ConnectPacket) Encode(w io.Writer) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	var buf writeBuffer

	// Variable header
	if err := buf.WriteString(protocolName); err != nil {
		return 0, err
	}
	buf.WriteByte(protocolLevel)
	buf.WriteByte(p.connectFlags())
	buf.WriteUint16(p.KeepAlive)

	// Payload, in the order fixed by the protocol
	if err := buf.WriteString(p.ClientID); err != nil {
		return 0, err
	}

	if p.WillFlag {
		if err := buf.WriteString(p.WillTopic); err != nil {
			return 0, err
		}
		if err := buf.WriteBinary(p.WillPayload); err != nil {
			return 0, err
		}
	}

	if p.Username != "" {
		if err := buf.WriteString(p.Username); err != nil {
			return 0, err
		}
	}

	if p.Password != nil {
		if err := buf.WriteBinary(p.Password); err != nil {
			return 0, err
		}
	}

	return writePacketBytes(w, PacketCONNECT, 0x00, buf.Bytes())
}

// Validate validates the packet contents.
func (p *ConnectPacket) Validate() error {
	if len(p.ClientID) > maxUint16 {
		return ErrClientIDTooLong
	}

	if p.WillQoS > QoS2 {
		return ErrInvalidQoS
	}

	// Will QoS and retain are only meaningful with a will present.
	if !p.WillFlag && (p.WillQoS != 0 || p.WillRetain || p.WillTopic != "") {
		return ErrInvalidWill
	}

	if p.WillFlag && p.WillTopic == "" {
		return ErrInvalidWill
	}

	if p.Password != nil && p.Username == "" {
		return ErrPasswordNoUser
	}

	return nil
}
