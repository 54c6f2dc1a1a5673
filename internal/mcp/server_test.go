package mcp

import (
	"encoding/json"
	"testing"

	"github.com/mark-chris/supportbot/internal/knowledge"
)

// newTestIndex returns an index with a small knowledge base and FAQ
func newTestIndex() *knowledge.Index {
	kb := knowledge.NewKnowledgeBase(
		knowledge.Entry{Keyword: "reset password", Reply: "Click the Reset link."},
		knowledge.Entry{Keyword: "billing", Reply: "Contact billing."},
		knowledge.Entry{Keyword: "default", Reply: "An agent will follow up."},
	)
	pairs := []knowledge.FAQPair{
		{Question: "How do I reset my password?", Answer: "Click the Reset link."},
		{Question: "Where can I download invoices?", Answer: "Billing > History."},
	}

	idx := knowledge.NewIndex()
	idx.Build(kb, pairs)
	return idx
}

// newInitializedServer returns a server past the initialize handshake
func newInitializedServer(opts ...Option) *Server {
	srv := NewServer(newTestIndex(), opts...)
	srv.setState(stateInitialized)
	return srv
}

func TestServer_InitialState(t *testing.T) {
	srv := NewServer(knowledge.NewIndex())

	if srv.getState() != stateNotInitialized {
		t.Errorf("expected initial state NotInitialized, got %v", srv.getState())
	}
	if srv.logger == nil {
		t.Error("expected a no-op logger by default")
	}
}

func TestServer_StateTransitions(t *testing.T) {
	srv := NewServer(knowledge.NewIndex())

	srv.setState(stateInitializing)
	if srv.getState() != stateInitializing {
		t.Errorf("expected state Initializing, got %v", srv.getState())
	}

	srv.setState(stateInitialized)
	if srv.getState() != stateInitialized {
		t.Errorf("expected state Initialized, got %v", srv.getState())
	}
}

func TestHandleMessage_Initialize(t *testing.T) {
	srv := NewServer(knowledge.NewIndex())

	req := JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
		Params:  json.RawMessage(`{"protocolVersion":"2025-11-25","capabilities":{}}`),
	}
	reqData, _ := json.Marshal(req)

	respData, err := srv.handleMessage(reqData)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var resp JSONRPCResponse
	if err := json.Unmarshal(respData, &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	// JSON unmarshals numbers as float64
	idFloat, ok := resp.ID.(float64)
	if !ok || idFloat != 1 {
		t.Errorf("expected id 1, got %v", resp.ID)
	}
}

func TestHandleMessage_Errors(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantCode int
	}{
		{"method not found", `{"jsonrpc":"2.0","id":1,"method":"unknown/method"}`, ErrCodeMethodNotFound},
		{"parse error", `{"jsonrpc":"2.0","id":1,"method":`, ErrCodeParseError},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`, ErrCodeInvalidRequest},
		{"tools before init", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, ErrCodeInvalidRequest},
		{"bad initialize params", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":[1]}`, ErrCodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(knowledge.NewIndex())

			respData, err := srv.handleMessage([]byte(tt.message))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			var resp JSONRPCErrorResponse
			if err := json.Unmarshal(respData, &resp); err != nil {
				t.Fatalf("failed to parse error response: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestHandleMessage_InitializedNotification(t *testing.T) {
	srv := NewServer(knowledge.NewIndex())
	srv.setState(stateInitializing)

	notif := JSONRPCNotification{
		JSONRPC: "2.0",
		Method:  "notifications/initialized",
	}
	notifData, _ := json.Marshal(notif)

	respData, err := srv.handleMessage(notifData)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Notifications don't get responses
	if len(respData) != 0 {
		t.Error("expected no response for notification")
	}

	if srv.getState() != stateInitialized {
		t.Errorf("expected state Initialized, got %v", srv.getState())
	}
}

func TestHandleMessage_UnknownNotificationIgnored(t *testing.T) {
	srv := NewServer(knowledge.NewIndex())

	respData, err := srv.handleMessage([]byte(`{"jsonrpc":"2.0","method":"notifications/cancelled"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(respData) != 0 {
		t.Errorf("expected no response, got %s", respData)
	}
}

func TestHandleMessage_Ping(t *testing.T) {
	srv := NewServer(knowledge.NewIndex())

	respData, err := srv.handleMessage([]byte(`{"jsonrpc":"2.0","id":"p1","method":"ping"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var resp JSONRPCResponse
	if err := json.Unmarshal(respData, &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.ID != "p1" {
		t.Errorf("expected id p1, got %v", resp.ID)
	}
	if result, ok := resp.Result.(map[string]interface{}); !ok || len(result) != 0 {
		t.Errorf("expected empty result object, got %v", resp.Result)
	}
}
