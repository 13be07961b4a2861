package a2a

import (
	"encoding/json"

	"github.com/google/uuid"
)

// RPC methods used by the bridge.
const (
	MethodMessageStream = "message/stream"
	MethodMessageSend   = "message/send"
	MethodTasksGet      = "tasks/get"
)

// Request is an outgoing JSON-RPC 2.0 envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      string `json:"id"`
}

// NewRequest builds an envelope with a fresh request id.
func NewRequest(method string, params any) Request {
	return Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      uuid.NewString(),
	}
}

// MessageSendParams wraps the message for message/send and message/stream.
type MessageSendParams struct {
	Message Message `json:"message"`
}

// TaskQueryParams are the params for tasks/get.
type TaskQueryParams struct {
	ID            string `json:"id"`
	HistoryLength int    `json:"historyLength,omitempty"`
}

// Response is an incoming JSON-RPC envelope: either a result or an error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ProtocolError  `json:"error,omitempty"`
}

// DecodeResponse parses a JSON-RPC response body and returns its untyped
// result payload. A malformed body yields *DecodeError; a server error field
// yields *ProtocolError. The error field is checked before the result.
func DecodeResponse(data []byte) (json.RawMessage, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}
