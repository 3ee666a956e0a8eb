package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		header FixedHeader
		size   int
	}{
		{
			name:   "pingresp",
			header: FixedHeader{PacketType: PacketPINGRESP, RemainingLength: 0},
			size:   2,
		},
		{
			name:   "publish with flags",
			header: FixedHeader{PacketType: PacketPUBLISH, Flags: 0x03, RemainingLength: 127},
			size:   2,
		},
		{
			name:   "two byte length",
			header: FixedHeader{PacketType: PacketPUBLISH, RemainingLength: 128},
			size:   3,
		},
		{
			name:   "max length",
			header: FixedHeader{PacketType: PacketPUBLISH, RemainingLength: 268435455},
			size:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf writeBuffer

			require.NoError(t, tt.header.encodeTo(&buf))
			assert.Equal(t, tt.size, buf.Len())
			assert.Equal(t, tt.size, tt.header.size())

			got, err := decodeFixedHeader(newReadCursor(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, tt.header, got)
		})
	}
}

func TestDecodeFixedHeaderShort(t *testing.T) {
	_, err := decodeFixedHeader(newReadCursor(nil))
	assert.ErrorIs(t, err, ErrShortBuffer)

	// First length byte has the continuation bit set but nothing follows.
	_, err = decodeFixedHeader(newReadCursor([]byte{0x30, 0x80}))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestDecodeFixedHeaderReservedType(t *testing.T) {
	_, err := decodeFixedHeader(newReadCursor([]byte{0x00, 0x00}))
	assert.ErrorIs(t, err, ErrInvalidPacketType)

	_, err = decodeFixedHeader(newReadCursor([]byte{0xF0, 0x00}))
	assert.ErrorIs(t, err, ErrInvalidPacketType)
}

func TestPacketTypeString(t *testing.T) {
	assert.Equal(t, "CONNECT", PacketCONNECT.String())
	assert.Equal(t, "PINGRESP", PacketPINGRESP.String())
	assert.Equal(t, "UNKNOWN", PacketType(0).String())
}
