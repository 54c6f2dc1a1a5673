package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark-chris/supportbot/internal/knowledge"
	"go.uber.org/zap"
)

// AskToolName is the single tool the server exposes
const AskToolName = "supportbot_ask"

// toolsCallParams represents the tools/call request parameters
type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolDefinition returns the MCP tool definition for supportbot_ask
func (s *Server) ToolDefinition() map[string]interface{} {
	return map[string]interface{}{
		"name":        AskToolName,
		"description": "Answer a customer support question from the bot's knowledge base. Keyword phrases are tried first; similar FAQ questions are used otherwise. Returns the reply with how it was chosen.",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "The customer's question as typed (e.g., 'How do I reset my password?')",
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(knowledge.StrategyKeyword), string(knowledge.StrategySimilarity), string(knowledge.StrategyHybrid)},
					"default":     string(knowledge.StrategyHybrid),
					"description": "keyword: phrase containment only; similarity: closest FAQ question; hybrid: keyword then similarity",
				},
				"threshold": map[string]interface{}{
					"type":        "number",
					"minimum":     -1,
					"maximum":     1,
					"default":     knowledge.DefaultSimilarityThreshold,
					"description": "Minimum cosine similarity for an FAQ answer",
				},
			},
			"required":             []string{"question"},
			"additionalProperties": false,
		},
	}
}

// handleToolsList handles the tools/list request
func handleToolsList(s *Server, params json.RawMessage) (interface{}, error) {
	if s.getState() != stateInitialized {
		return nil, errNotInitialized
	}

	return map[string]interface{}{
		"tools": []interface{}{s.ToolDefinition()},
	}, nil
}

// handleToolsCall handles the tools/call request. Unknown tools are protocol
// errors; bad arguments and failed lookups are tool execution errors.
func handleToolsCall(s *Server, params json.RawMessage) (interface{}, error) {
	if s.getState() != stateInitialized {
		return nil, errNotInitialized
	}

	var p toolsCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: tools/call: %v", errInvalidParams, err)
	}

	if err := validateToolName(p.Name); err != nil {
		return nil, err
	}

	opts, err := s.askOptions(p.Arguments)
	if err != nil {
		return createToolExecutionErrorResult(err.Error()), nil
	}

	text, err := s.HandleRequest(opts)
	if err != nil {
		return createToolExecutionErrorResult(fmt.Sprintf("Ask failed: %v", err)), nil
	}

	return map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"type": "text",
				"text": text,
			},
		},
		"isError": false,
	}, nil
}

// askOptions validates tool arguments and merges them over the server
// defaults
func (s *Server) askOptions(args map[string]interface{}) (knowledge.AskOptions, error) {
	if err := validateNoUnknownParams(args, askToolParams); err != nil {
		return knowledge.AskOptions{}, err
	}

	question, err := validateQuestion(args["question"])
	if err != nil {
		return knowledge.AskOptions{}, err
	}

	strategy, err := validateStrategy(args["strategy"])
	if err != nil {
		return knowledge.AskOptions{}, err
	}
	if strategy == "" {
		strategy = s.defaults.Strategy
	}

	threshold, err := validateThreshold(args["threshold"])
	if err != nil {
		return knowledge.AskOptions{}, err
	}
	if threshold == nil {
		threshold = s.defaults.Threshold
	}

	return knowledge.AskOptions{
		Question:      question,
		Strategy:      strategy,
		Threshold:     threshold,
		Fallback:      s.defaults.Fallback,
		NewVectorizer: s.newVectorizer,
		TokenCounter:  s.tokenCounter,
	}, nil
}

// HandleRequest answers a question and returns the result as JSON
func (s *Server) HandleRequest(opts knowledge.AskOptions) (string, error) {
	requestID := uuid.NewString()

	result, err := knowledge.Ask(s.index, opts)
	if err != nil {
		s.logger.Warn("ask failed", zap.String("request_id", requestID), zap.Error(err))
		return "", err
	}

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("strategy", string(result.Strategy)),
		zap.Bool("matched", result.Matched),
	}
	if result.Score != nil {
		fields = append(fields, zap.Float64("score", *result.Score))
	}
	s.logger.Info("answered tool call", fields...)

	return knowledge.FormatOutput(result, knowledge.FormatJSON, false)
}

// createToolExecutionErrorResult creates a tool execution error result
func createToolExecutionErrorResult(message string) interface{} {
	return map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"type": "text",
				"text": message,
			},
		},
		"isError": true,
	}
}
