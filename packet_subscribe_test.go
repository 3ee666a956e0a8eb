package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeEncode(t *testing.T) {
	pkt := &SubscribePacket{
		MessageID: 5,
		Subscriptions: []Subscription{
			{TopicFilter: "a/b", QoS: QoS1},
		},
	}

	var buf writeBuffer
	n, err := pkt.Encode(&buf)
	require.NoError(t, err)
	assert.Equal(t, buf.Len(), n)

	data := buf.Bytes()

	// SUBSCRIBE always carries the reserved flags 0x02.
	assert.Equal(t, byte(0x82), data[0])
	assert.Equal(t, []byte{0x00, 0x05}, data[2:4])
	assert.Equal(t, []byte{0x00, 0x03, 'a', '/', 'b', 0x01}, data[4:])
}

func TestSubscribeEncodeMultiple(t *testing.T) {
	pkt := &SubscribePacket{
		MessageID: 1,
		Subscriptions: []Subscription{
			{TopicFilter: "a", QoS: QoS0},
			{TopicFilter: "b/#", QoS: QoS1},
		},
	}

	var buf writeBuffer
	_, err := pkt.Encode(&buf)
	require.NoError(t, err)

	// One filter/QoS pair per subscription, in order.
	body := buf.Bytes()[4:]
	assert.Equal(t, []byte{0x00, 0x01, 'a', 0x00, 0x00, 0x03, 'b', '/', '#', 0x01}, body)
}

func TestSubscribeValidate(t *testing.T) {
	pkt := &SubscribePacket{MessageID: 1}
	assert.ErrorIs(t, pkt.Validate(), ErrNoSubscriptions)

	pkt.Subscriptions = []Subscription{{TopicFilter: "a", QoS: QoS0}}
	pkt.MessageID = 0
	assert.ErrorIs(t, pkt.Validate(), ErrMessageIDMissing)
}
