package esphome

import (
	"errors"
	"fmt"

	"github.com/XANi/esphome2prom/api"
)

var (
	// ErrIO wraps transport read/write failures. The connection is unusable afterwards.
	ErrIO = errors.New("io error")
	// ErrCodec wraps payload encode/decode failures.
	ErrCodec = errors.New("codec error")
	// ErrInvalidPassword is returned when the device rejects the password.
	ErrInvalidPassword = errors.New("the password was not valid")
	// ErrUnexpectedTermination marks a Done sentinel or DisconnectResponse arriving where none was
	// expected, or the stream ending after the device sent a DisconnectRequest.
	ErrUnexpectedTermination = errors.New("unexpected termination")
	// ErrConnectionBroken is returned by every call after a fatal transport, framing or codec error.
	ErrConnectionBroken = errors.New("connection broken")
	ErrInvalidPhase     = errors.New("operation not valid in current session phase")
	ErrSessionClosed    = errors.New("session closed")
)

// UnexpectedResponseError reports a reply whose tag does not match the awaited one.
type UnexpectedResponseError struct {
	Expected api.MessageType
	Received api.MessageType
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("received an unexpected response type (expected %s, received %s)",
		e.Expected, e.Received)
}

func (e *UnexpectedResponseError) Unwrap() error {
	switch e.Received {
	case api.ListEntitiesDoneResponseType, api.DisconnectResponseType:
		return ErrUnexpectedTermination
	}
	return nil
}

// UnknownMessageTypeError describes a frame with a tag outside the registry. It
// is not fatal: the body is skipped and the error is delivered as an event.
type UnknownMessageTypeError struct {
	Type   uint32
	Length uint32
}

func (e *UnknownMessageTypeError) Error() string {
	return fmt.Sprintf("unknown message type %d (%d bytes skipped)", e.Type, e.Length)
}
