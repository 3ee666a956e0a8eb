package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnackDecode(t *testing.T) {
	tests := []struct {
		name           string
		data           []byte
		sessionPresent bool
		returnCode     ConnackCode
	}{
		{
			name:       "accepted",
			data:       []byte{0x20, 0x02, 0x00, 0x00},
			returnCode: ConnectionAccepted,
		},
		{
			name:           "accepted with session",
			data:           []byte{0x20, 0x02, 0x01, 0x00},
			sessionPresent: true,
			returnCode:     ConnectionAccepted,
		},
		{
			name:       "not authorized",
			data:       []byte{0x20, 0x02, 0x00, 0x05},
			returnCode: ErrCodeNotAuthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt, _, err := Decode(tt.data)
			require.NoError(t, err)

			connack := pkt.(*ConnackPacket)
			assert.Equal(t, tt.sessionPresent, connack.SessionPresent)
			assert.Equal(t, tt.returnCode, connack.ReturnCode)
		})
	}
}

func TestConnackDecodeInvalid(t *testing.T) {
	t.Run("reserved header flags", func(t *testing.T) {
		_, _, err := Decode([]byte{0x21, 0x02, 0x00, 0x00})
		assert.ErrorIs(t, err, ErrInvalidPacketFlags)
	})

	t.Run("reserved ack flags", func(t *testing.T) {
		_, _, err := Decode([]byte{0x20, 0x02, 0x02, 0x00})
		assert.ErrorIs(t, err, ErrInvalidConnackFlags)
	})
}

func TestConnackCodeString(t *testing.T) {
	assert.Equal(t, "connection accepted", ConnectionAccepted.String())
	assert.Equal(t, "not authorized", ErrCodeNotAuthorized.String())
	assert.Equal(t, "unknown return code", ConnackCode(42).String())
}

func TestConnackError(t *testing.T) {
	tests := []struct {
		code ConnackCode
		want error
	}{
		{ErrCodeUnacceptableProtocol, ErrUnacceptableProtocolVersion},
		{ErrCodeIdentifierRejected, ErrIdentifierRejected},
		{ErrCodeServerUnavailable, ErrServerUnavailable},
		{ErrCodeBadCredentials, ErrBadCredentials},
		{ErrCodeNotAuthorized, ErrNotAuthorized},
		{ConnackCode(99), ErrConnectionRefused},
	}

	for _, tt := range tests {
		assert.ErrorIs(t, connackError(tt.code), tt.want)
	}
}
