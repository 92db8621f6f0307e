package strip

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected indicates the controller has no open port.
	ErrNotConnected = errors.New("not connected")
	// ErrEmptyPayload indicates SetLEDData was called without colors.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrPayloadTooLarge indicates more colors than a 16-bit count can carry.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrPortNotFound indicates the port name can't be resolved.
	ErrPortNotFound = errors.New("port not found")
	// ErrPortOpen indicates the port exists but can't be opened.
	ErrPortOpen = errors.New("port open error")
	// ErrWriteTimeout indicates bytes were not accepted in time.
	ErrWriteTimeout = errors.New("write timeout")
	// ErrWrite indicates the transport failed a write.
	ErrWrite = errors.New("write error")
	// ErrReadTimeout indicates no byte arrived in time.
	ErrReadTimeout = errors.New("read timeout")
	// ErrRead indicates the transport failed a read.
	ErrRead = errors.New("read error")
	// ErrNegativeAck indicates the firmware rejected the command.
	ErrNegativeAck = errors.New("negative acknowledgement")
	// ErrUnexpectedResponse indicates a byte other than ack/nack was received.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// UnexpectedResponseError carries the garbled acknowledgement byte.
type UnexpectedResponseError struct {
	Got byte
}

// Error implements error.
func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response 0x%02x", e.Got)
}

// Is matches ErrUnexpectedResponse.
func (e *UnexpectedResponseError) Is(target error) bool {
	return target == ErrUnexpectedResponse
}

// OpError reports a failed strip command.
type OpError struct {
	Op  Opcode
	Err error
}

// Error implements error.
func (e *OpError) Error() string {
	return e.Op.String() + ": " + e.Err.Error()
}

// Unwrap exposes the failure kind.
func (e *OpError) Unwrap() error {
	return e.Err
}

var kinds = []struct {
	err  error
	name string
}{
	{ErrNotConnected, "not_connected"},
	{ErrEmptyPayload, "empty_payload"},
	{ErrPayloadTooLarge, "payload_too_large"},
	{ErrPortNotFound, "port_not_found"},
	{ErrPortOpen, "port_open"},
	{ErrWriteTimeout, "write_timeout"},
	{ErrWrite, "write"},
	{ErrReadTimeout, "read_timeout"},
	{ErrRead, "read"},
	{ErrNegativeAck, "negative_ack"},
	{ErrUnexpectedResponse, "unexpected_response"},
}

// Kind returns a stable token naming the failure kind of err,
// "" for nil and "unknown" for errors outside this package.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}
