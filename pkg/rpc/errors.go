package rpc

import (
	"encoding/json"
	"fmt"
)

// ConfigurationError is returned when the client has no usable active network.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "rpc client not configured: " + e.Reason
}

// RequestFailedError is returned once every attempt of a call failed at the
// transport level (connection error, timeout, bad status or undecodable body).
type RequestFailedError struct {
	Method   string
	Attempts int
	Err      error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("rpc request %s failed after %d attempts: %v", e.Method, e.Attempts, e.Err)
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

// RPCError is returned when the endpoint answered with a JSON-RPC error
// envelope on the final attempt.
type RPCError struct {
	Code     int
	Message  string
	Data     json.RawMessage
	Payload  string // the error object exactly as serialized by the node
	Attempts int
}

func (e *RPCError) Error() string {
	return "rpc error: " + e.Payload
}

// HTTPStatusError is returned by HTTPTransport for non-2xx responses.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

func newRPCError(raw json.RawMessage) *RPCError {
	e := &RPCError{Payload: string(raw)}
	var body struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data,omitempty"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		e.Code = body.Code
		e.Message = body.Message
		e.Data = body.Data
	}
	return e
}
