// Package a2a defines the JSON-RPC envelope and the agent-to-agent message
// shapes exchanged with callers.
package a2a

import (
	"encoding/json"
	"fmt"
)

// Version is the only JSON-RPC protocol version accepted and emitted.
const Version = "2.0"

// JSON-RPC 2.0 error codes surfaced by the agent.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is an inbound JSON-RPC request. Params stay raw until the method is
// known.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outbound JSON-RPC response carrying either a result or an
// error, never both.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewError builds a JSON-RPC error object.
func NewError(code int, message string, data any) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

// SuccessResponse wraps a result into a response echoing the request id.
func SuccessResponse(id json.RawMessage, result any) Response {
	return Response{JSONRPC: Version, ID: id, Result: result}
}

// ErrorResponse wraps a JSON-RPC error into a response echoing the request id.
func ErrorResponse(id json.RawMessage, err *Error) Response {
	return Response{JSONRPC: Version, ID: id, Error: err}
}
