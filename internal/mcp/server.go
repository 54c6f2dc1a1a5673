package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/mark-chris/supportbot/internal/knowledge"
	"go.uber.org/zap"
)

// maxMessageSize bounds a single newline-delimited JSON-RPC message
const maxMessageSize = 4 * 1024 * 1024

// serverState represents the server lifecycle state
type serverState int

const (
	stateNotInitialized serverState = iota
	stateInitializing
	stateInitialized
)

// AskDefaults are applied to tool calls that do not set their own values
type AskDefaults struct {
	Strategy  knowledge.Strategy
	Threshold *float64
	Fallback  string
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVectorizerFactory sets the vectorizer used for similarity answers
func WithVectorizerFactory(factory knowledge.VectorizerFactory) Option {
	return func(s *Server) {
		s.newVectorizer = factory
	}
}

// WithAskDefaults sets the strategy, threshold and fallback for tool calls
func WithAskDefaults(defaults AskDefaults) Option {
	return func(s *Server) {
		s.defaults = defaults
	}
}

// WithTokenCounter attaches token counts to tool call answers
func WithTokenCounter(counter *knowledge.TokenCounter) Option {
	return func(s *Server) {
		s.tokenCounter = counter
	}
}

// Server implements the Model Context Protocol over stdio for the support bot
type Server struct {
	index              *knowledge.Index
	newVectorizer      knowledge.VectorizerFactory
	tokenCounter       *knowledge.TokenCounter
	defaults           AskDefaults
	logger             *zap.Logger
	state              serverState
	protocolVersion    string
	clientCapabilities map[string]interface{}
	mu                 sync.RWMutex
}

// NewServer creates a new MCP server
func NewServer(index *knowledge.Index, opts ...Option) *Server {
	s := &Server{
		index:  index,
		state:  stateNotInitialized,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// setState sets the server state (thread-safe)
func (s *Server) setState(state serverState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// getState gets the server state (thread-safe)
func (s *Server) getState() serverState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ServeStdio reads newline-delimited JSON-RPC messages from r and writes one
// response line per request to w until r is exhausted or ctx is done.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	lines, readErr := readLines(ctx, r)
	out := bufio.NewWriter(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var line []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read request: %w", err)
				}
				return nil
			}
			line = l
		}

		resp, err := s.handleMessage(line)
		if err != nil {
			return err
		}
		if len(resp) == 0 {
			continue
		}

		if _, err := out.Write(append(resp, '\n')); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
}

// readLines scans non-blank lines from r in the background. The error
// channel receives exactly one value before lines is closed.
func readLines(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- append([]byte(nil), line...):
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

// handleMessage dispatches one JSON-RPC message and returns the encoded
// response, or nil for notifications
func (s *Server) handleMessage(data []byte) ([]byte, error) {
	req, err := parseRequest(data)
	if err != nil {
		s.logger.Debug("rejecting malformed message", zap.Error(err))
		code, msg := ErrCodeInvalidRequest, ErrMsgInvalidRequest
		if !json.Valid(data) {
			code, msg = ErrCodeParseError, ErrMsgParseError
		}
		return json.Marshal(createErrorResponse(code, msg, err.Error(), nil))
	}

	handler, ok := methods[req.Method]
	if !ok {
		if req.IsNotification() {
			return nil, nil
		}
		return json.Marshal(createErrorResponse(ErrCodeMethodNotFound, ErrMsgMethodNotFound, req.Method, req.ID))
	}

	result, err := handler(s, req.Params)
	if req.IsNotification() {
		if err != nil {
			s.logger.Debug("notification failed", zap.String("method", req.Method), zap.Error(err))
		}
		return nil, nil
	}
	if err != nil {
		code, msg := errorCode(err)
		s.logger.Debug("request failed",
			zap.String("method", req.Method),
			zap.Int("code", code),
			zap.Error(err),
		)
		return json.Marshal(createErrorResponse(code, msg, err.Error(), req.ID))
	}

	return json.Marshal(createResponse(result, req.ID))
}
