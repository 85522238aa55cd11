package messaging

import "errors"

var (
	// ErrUnknownMessageType is returned when decoding a message with an unrecognized type tag
	ErrUnknownMessageType = errors.New("unknown message type")
	// ErrMalformedMessage is returned when a message cannot be decoded
	ErrMalformedMessage = errors.New("malformed message")
	// ErrNoHandler is returned when a router has no handler for a message kind
	ErrNoHandler = errors.New("no handler registered for message")
	// ErrNoReceiver is returned when no router is registered for the destination
	ErrNoReceiver = errors.New("no receiver for destination")
	// ErrTimeout is returned when a request does not complete within the bus timeout
	ErrTimeout = errors.New("request timed out")
	// ErrHandlerPanic is returned when the receiving handler panicked
	ErrHandlerPanic = errors.New("message handler panicked")
	// ErrUnexpectedResponse is returned when a handler replies with the wrong response type
	ErrUnexpectedResponse = errors.New("unexpected response type")
)
