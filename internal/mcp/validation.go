package mcp

import (
	"fmt"
	"math"
	"strings"

	"github.com/mark-chris/supportbot/internal/knowledge"
)

// maxQuestionLength bounds the question argument, in characters
const maxQuestionLength = 10000

// askToolParams lists the arguments supportbot_ask accepts
var askToolParams = []string{"question", "strategy", "threshold"}

// validateToolName validates the tool name is supportbot_ask
func validateToolName(name string) error {
	if name != AskToolName {
		return fmt.Errorf("%w: %s", errUnknownTool, name)
	}
	return nil
}

// validateQuestion checks the question argument is a non-blank string
func validateQuestion(value interface{}) (string, error) {
	question, ok := value.(string)
	if !ok || strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question must be a non-empty string")
	}
	if len([]rune(question)) > maxQuestionLength {
		return "", fmt.Errorf("question exceeds maximum length of %d characters", maxQuestionLength)
	}
	return question, nil
}

// validateStrategy checks the optional strategy argument
func validateStrategy(value interface{}) (knowledge.Strategy, error) {
	if value == nil {
		return "", nil
	}
	name, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("Invalid strategy. Supported values: keyword, similarity, hybrid")
	}
	strategy, err := knowledge.ParseStrategy(name)
	if err != nil || name == "" {
		return "", fmt.Errorf("Invalid strategy '%s'. Supported values: keyword, similarity, hybrid", name)
	}
	return strategy, nil
}

// validateThreshold checks the optional threshold argument lies in [-1, 1]
func validateThreshold(value interface{}) (*float64, error) {
	if value == nil {
		return nil, nil
	}
	threshold, ok := value.(float64)
	if !ok || math.IsNaN(threshold) || threshold < -1 || threshold > 1 {
		return nil, fmt.Errorf("Invalid threshold '%v'. Must be a number between -1 and 1", value)
	}
	return &threshold, nil
}

// validateNoUnknownParams checks for unknown parameters
func validateNoUnknownParams(args map[string]interface{}, allowed []string) error {
	allowedMap := make(map[string]bool, len(allowed))
	for _, key := range allowed {
		allowedMap[key] = true
	}

	for key := range args {
		if !allowedMap[key] {
			return fmt.Errorf("Unknown parameter '%s'. Supported parameters: %s", key, strings.Join(allowed, ", "))
		}
	}

	return nil
}
