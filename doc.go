// Package mqtt implements an MQTT 3.1.1 client over a message-oriented
// byte transport, typically a WebSocket carrying the `mqtt` subprotocol.
//
// The package is split into three layers:
//
//   - A stateless wire codec: packet structs (ConnectPacket, PublishPacket,
//     SubackPacket, ...) with Encode methods, and the Decode / DecodeAll
//     functions that reassemble packets split across transport messages.
//   - A connection state machine (Conn) that owns the transport, performs the
//     CONNECT/CONNACK handshake, sends PINGREQ heartbeats and acknowledges
//     inbound QoS 1 publishes.
//   - A session layer (Client) exposing Publish and Subscribe, correlating
//     acknowledgments to operations by message identifier.
//
// # Connecting
//
//	client, err := mqtt.Dial(ctx, "wss://broker.example.com/mqtt",
//	    mqtt.WithClientID("sensor-42"),
//	    mqtt.WithKeepAlive(60),
//	)
//	defer client.Close()
//
// Any already-connected Transport can be used instead of the built-in
// WebSocket dialer:
//
//	client, err := mqtt.Connect(ctx, transport, mqtt.WithClientID("sensor-42"))
//
// # Publish and subscribe
//
// Publish and Subscribe return tokens that complete when the matching
// acknowledgment arrives (immediately for QoS 0 publishes):
//
//	token, err := client.Publish(&mqtt.Message{Topic: "a/b", Payload: data, QoS: 1})
//	if err == nil {
//	    err = token.Wait(ctx)
//	}
//
// The QoS 2 acknowledgment flow, UNSUBSCRIBE, session persistence and
// automatic reconnection are not implemented; inbound QoS 2 publishes are
// delivered to handlers but never acknowledged, so brokers may redeliver
// them. TLS is handled entirely by the transport.
package mqtt
