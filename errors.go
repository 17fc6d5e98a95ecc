package gokeyence

import "fmt"

// InvalidPayloadError is returned when write data cannot be encoded.
// It is raised before any network I/O happens.
type InvalidPayloadError struct {
	Value  interface{}
	Reason string
}

func (e InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid payload %v: %s", e.Value, e.Reason)
}

// EmptyResponseError is returned when the controller reply carries no data
type EmptyResponseError struct{}

func (e EmptyResponseError) Error() string {
	return "empty response"
}

// MalformedResponseError names the reply token that violated the framing rules
type MalformedResponseError struct {
	Token string
}

func (e MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response token %q", e.Token)
}

// OutOfRangeError is returned by the packed-character decoder when a register
// value cannot be represented as two ASCII bytes.
type OutOfRangeError struct {
	Value uint64
}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("register value %d is not two ASCII characters (max 65535)", e.Value)
}

// ControllerError is an error code reported by the controller (E0, E1, ...)
type ControllerError struct {
	Code string
}

func (e ControllerError) Error() string {
	switch e.Code {
	case "E0":
		return "controller error E0: device number error"
	case "E1":
		return "controller error E1: command error"
	case "E4":
		return "controller error E4: write protected"
	default:
		return fmt.Sprintf("controller error %s", e.Code)
	}
}

// ClientClosedError is returned for operations on a closed client
type ClientClosedError struct{}

func (e ClientClosedError) Error() string {
	return "client is closed"
}

// NotAcknowledgedError is reported when the controller answered a write
// with something other than OK.
type NotAcknowledgedError struct {
	Address string
}

func (e NotAcknowledgedError) Error() string {
	return fmt.Sprintf("write to %s not acknowledged", e.Address)
}

// UnexpectedResultError is returned when an interceptor completes an operation
// with something other than a Response.
type UnexpectedResultError struct {
	Operation OperationType
	Result    interface{}
}

func (e UnexpectedResultError) Error() string {
	return fmt.Sprintf("%s returned %T, want Response", e.Operation, e.Result)
}
