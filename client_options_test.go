package mqtt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()

	assert.NotEmpty(t, o.clientID)
	assert.True(t, strings.HasPrefix(o.clientID, "mqtt-"))
	assert.Equal(t, uint16(60), o.keepAlive)
	assert.True(t, o.cleanSession)
	assert.NotNil(t, o.logger)

	// Generated identifiers are unique per client.
	assert.NotEqual(t, o.clientID, defaultOptions().clientID)
}

func TestOptions(t *testing.T) {
	o := defaultOptions()

	dialer := NewWSDialer()
	WithClientID("custom")(o)
	WithKeepAlive(30)(o)
	WithCleanSession(false)(o)
	WithCredentials("user", "pass")(o)
	WithWill("status", []byte("gone"), true, QoS1)(o)
	WithDialer(dialer)(o)
	WithWriteTimeout(time.Second)(o)

	assert.Equal(t, "custom", o.clientID)
	assert.Equal(t, uint16(30), o.keepAlive)
	assert.False(t, o.cleanSession)
	assert.Equal(t, "user", o.username)
	assert.Equal(t, []byte("pass"), o.password)
	assert.Equal(t, "status", o.willTopic)
	assert.Equal(t, []byte("gone"), o.willPayload)
	assert.True(t, o.willRetain)
	assert.Equal(t, QoS1, o.willQoS)
	assert.Same(t, dialer, o.dialer.(*WSDialer))
	assert.Equal(t, time.Second, o.writeTimeout)
}

func TestWithLoggerNil(t *testing.T) {
	o := defaultOptions()
	base := o.logger

	WithLogger(nil)(o)
	assert.Same(t, base, o.logger)
}
