package mqtt

import (
	"errors"
	"fmt"
)

// EventHandler receives client lifecycle events and asynchronous errors as
// error values. Inspect them with errors.Is and errors.As.
type EventHandler func(event error)

// Sentinel events for the connection lifecycle - check with errors.Is().
var (
	// ErrConnected is emitted when the broker accepts the connection.
	ErrConnected = errors.New("connected")

	// ErrDisconnected is emitted when the connection closes gracefully.
	ErrDisconnected = errors.New("disconnected")

	// ErrConnectionLost is emitted when the transport fails unexpectedly.
	ErrConnectionLost = errors.New("connection lost")
)

// Sentinel errors for operations - check with errors.Is().
var (
	// ErrConnectionClosed fails every operation still awaiting an
	// acknowledgment when the connection closes.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrNotConnected is returned when an operation requires an active
	// connection.
	ErrNotConnected = errors.New("not connected")

	// ErrSubscriptionFailed is returned when a SUBACK rejects one or more
	// requested topics.
	ErrSubscriptionFailed = errors.New("subscription failed")
)

// Connection refusal errors, one per CONNACK return code. Each wraps
// ErrConnectionRefused - check with errors.Is().
var (
	ErrConnectionRefused           = errors.New("connection refused")
	ErrUnacceptableProtocolVersion = fmt.Errorf("%w: unacceptable protocol version", ErrConnectionRefused)
	ErrIdentifierRejected          = fmt.Errorf("%w: identifier rejected", ErrConnectionRefused)
	ErrServerUnavailable           = fmt.Errorf("%w: server unavailable", ErrConnectionRefused)
	ErrBadCredentials              = fmt.Errorf("%w: bad user name or password", ErrConnectionRefused)
	ErrNotAuthorized               = fmt.Errorf("%w: not authorized", ErrConnectionRefused)
)

// connackError maps a nonzero CONNACK return code to its refusal error.
// Unknown codes map to the generic ErrConnectionRefused.
func connackError(code ConnackCode) error {
	switch code {
	case ErrCodeUnacceptableProtocol:
		return ErrUnacceptableProtocolVersion
	case ErrCodeIdentifierRejected:
		return ErrIdentifierRejected
	case ErrCodeServerUnavailable:
		return ErrServerUnavailable
	case ErrCodeBadCredentials:
		return ErrBadCredentials
	case ErrCodeNotAuthorized:
		return ErrNotAuthorized
	default:
		return ErrConnectionRefused
	}
}

// ConnectError carries the CONNACK return code of a refused connection.
// Extract with errors.As().
type ConnectError struct {
	err        error
	ReturnCode ConnackCode
}

func (e *ConnectError) Error() string { return e.err.Error() }
func (e *ConnectError) Unwrap() error { return e.err }

// newConnectError creates a ConnectError from a refusal return code.
func newConnectError(code ConnackCode) *ConnectError {
	return &ConnectError{
		err:        connackError(code),
		ReturnCode: code,
	}
}

// ConnectedEvent is emitted once the handshake completes. Extract with
// errors.As().
type ConnectedEvent struct {
	err            error
	SessionPresent bool
}

func (e *ConnectedEvent) Error() string { return e.err.Error() }
func (e *ConnectedEvent) Unwrap() error { return e.err }

func newConnectedEvent(sessionPresent bool) *ConnectedEvent {
	return &ConnectedEvent{err: ErrConnected, SessionPresent: sessionPresent}
}

// ConnectionLostError is emitted when the transport fails while connected.
// Extract with errors.As().
type ConnectionLostError struct {
	err   error
	Cause error
}

func (e *ConnectionLostError) Error() string {
	if e.Cause != nil {
		return "connection lost: " + e.Cause.Error()
	}
	return "connection lost"
}

func (e *ConnectionLostError) Unwrap() error { return e.err }

func newConnectionLostError(cause error) *ConnectionLostError {
	return &ConnectionLostError{err: ErrConnectionLost, Cause: cause}
}
