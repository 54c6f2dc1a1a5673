package mcp

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// ProtocolVersion is the MCP revision the server speaks
const ProtocolVersion = "2025-11-25"

// ServerName and ServerVersion identify the server during initialize
var (
	ServerName    = "supportbot"
	ServerVersion = "0.1.0"
)

// initializeParams represents the initialize request parameters
type initializeParams struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	ClientInfo      map[string]interface{} `json:"clientInfo,omitempty"`
}

// handleInitialize handles the initialize request
func handleInitialize(s *Server, params json.RawMessage) (interface{}, error) {
	if s.getState() != stateNotInitialized {
		return nil, errAlreadyInitialized
	}

	var p initializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: initialize: %v", errInvalidParams, err)
		}
	}

	// Only one revision is supported; clients asking for another get ours
	// and may disconnect
	if p.ProtocolVersion != ProtocolVersion {
		s.logger.Info("client requested different protocol version",
			zap.String("requested", p.ProtocolVersion),
			zap.String("served", ProtocolVersion),
		)
	}

	s.mu.Lock()
	s.protocolVersion = ProtocolVersion
	s.clientCapabilities = p.Capabilities
	s.state = stateInitializing
	s.mu.Unlock()

	return map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{
				"listChanged": false,
			},
		},
		"serverInfo": map[string]interface{}{
			"name":        ServerName,
			"version":     ServerVersion,
			"description": "Customer support bot - answer questions from a keyword and FAQ knowledge base",
		},
	}, nil
}

// handleInitialized completes the handshake
func handleInitialized(s *Server, params json.RawMessage) (interface{}, error) {
	if s.getState() != stateInitializing {
		return nil, errNotInitialized
	}
	s.setState(stateInitialized)
	s.logger.Debug("session initialized", zap.Int("entries", s.index.Count()))
	return nil, nil
}
