package a2a

import (
	"fmt"
	"strings"
)

// TransportError wraps a connection-level failure. It terminates the current
// operation; retrying is the caller's policy, never done here.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is a JSON-RPC error object returned by the server. The code
// and message are server-provided and surfaced verbatim.
type ProtocolError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *ProtocolError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "unknown protocol error"
	}
	return fmt.Sprintf("protocol error %d: %s", e.Code, msg)
}

// DecodeError marks a malformed data: payload. Frame-local: the frame is
// dropped and the stream continues.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
