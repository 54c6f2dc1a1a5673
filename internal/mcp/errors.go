package mcp

import (
	"errors"
)

// JSON-RPC error codes
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Error message constants
const (
	ErrMsgParseError     = "Parse error"
	ErrMsgInvalidRequest = "Invalid Request"
	ErrMsgMethodNotFound = "Method not found"
	ErrMsgInvalidParams  = "Invalid params"
	ErrMsgInternalError  = "Internal error"
)

// Protocol errors returned by method handlers
var (
	errNotInitialized     = errors.New("server not initialized")
	errAlreadyInitialized = errors.New("already initialized")
	errInvalidParams      = errors.New("invalid params")
	errUnknownTool        = errors.New("unknown tool")
)

// errorCode maps a handler error onto a JSON-RPC error code and message
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidParams), errors.Is(err, errUnknownTool):
		return ErrCodeInvalidParams, ErrMsgInvalidParams
	case errors.Is(err, errNotInitialized), errors.Is(err, errAlreadyInitialized):
		return ErrCodeInvalidRequest, ErrMsgInvalidRequest
	default:
		return ErrCodeInternalError, ErrMsgInternalError
	}
}
