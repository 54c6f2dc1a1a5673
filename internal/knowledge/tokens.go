package knowledge

import (
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used to count reply tokens
const DefaultEncoding = "cl100k_base"

// TokenCounter counts tokens in replies so callers can budget them
type TokenCounter struct {
	encoder *tiktoken.Tiktoken
}

// NewTokenCounter creates a counter for the named encoding. On error the
// returned counter is still usable and approximates.
func NewTokenCounter(encoding string) (*TokenCounter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return &TokenCounter{}, err
	}
	return &TokenCounter{encoder: enc}, nil
}

// CountTokens counts the tokens in text, or approximates with
// characters/4 when no encoder is loaded
func (tc *TokenCounter) CountTokens(text string) int {
	if tc == nil || tc.encoder == nil {
		return len(text) / 4
	}
	return len(tc.encoder.Encode(text, nil, nil))
}

// Exact reports whether counts come from a real encoder
func (tc *TokenCounter) Exact() bool {
	return tc != nil && tc.encoder != nil
}
