package mcp

import (
	"encoding/json"
)

// methodHandler handles one JSON-RPC method. Errors become JSON-RPC error
// responses; see errorCode.
type methodHandler func(s *Server, params json.RawMessage) (interface{}, error)

// methods lists every JSON-RPC method the server answers
var methods = map[string]methodHandler{
	"initialize":                handleInitialize,
	"notifications/initialized": handleInitialized,
	"ping":                      handlePing,
	"tools/list":                handleToolsList,
	"tools/call":                handleToolsCall,
}

// handlePing answers ping in any state
func handlePing(s *Server, params json.RawMessage) (interface{}, error) {
	return map[string]interface{}{}, nil
}
