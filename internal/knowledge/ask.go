package knowledge

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy selects how a question is answered
type Strategy string

// Answering strategies.
const (
	StrategyKeyword    Strategy = "keyword"
	StrategySimilarity Strategy = "similarity"
	StrategyHybrid     Strategy = "hybrid"
)

// ErrUnknownStrategy is returned for a strategy name Ask does not know
var ErrUnknownStrategy = errors.New("unknown strategy")

// ParseStrategy converts a name into a Strategy. An empty name is hybrid.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(name))); s {
	case "":
		return StrategyHybrid, nil
	case StrategyKeyword, StrategySimilarity, StrategyHybrid:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: keyword, similarity, hybrid)", ErrUnknownStrategy, name)
	}
}

// VectorizerFactory creates a vectorizer for a single Ask call
type VectorizerFactory func() (Vectorizer, error)

// DefaultVectorizerFactory creates a unigram TFIDFVectorizer
func DefaultVectorizerFactory() (Vectorizer, error) {
	return NewTFIDFVectorizer(1), nil
}

// AskOptions configures an Ask call
type AskOptions struct {
	Question      string
	Strategy      Strategy
	Threshold     *float64 // nil selects DefaultSimilarityThreshold
	Fallback      string
	NewVectorizer VectorizerFactory
	TokenCounter  *TokenCounter
}

// AskResult holds the reply to a question and how it was chosen
type AskResult struct {
	Question   string   `json:"question"`
	Reply      string   `json:"reply"`
	Strategy   Strategy `json:"strategy"`
	Matched    bool     `json:"matched"`
	Keyword    string   `json:"keyword,omitempty"`
	Score      *float64 `json:"score,omitempty"`
	TokenCount int      `json:"token_count,omitempty"`
}

// Ask answers a question against the index with the selected strategy.
// The hybrid strategy tries keyword containment first and falls back to
// similarity retrieval.
func Ask(idx *Index, opts AskOptions) (AskResult, error) {
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyHybrid
	}

	kb := idx.Knowledge()
	result := AskResult{Question: opts.Question, Strategy: strategy}

	switch strategy {
	case StrategyKeyword:
		if e, ok := MatchKeyword(kb, opts.Question); ok {
			result.Matched = true
			result.Keyword = e.Keyword
		}
		result.Reply = ChooseResponse(kb, opts.Question)

	case StrategySimilarity:
		if err := askSimilarity(idx, kb, opts, &result); err != nil {
			return AskResult{}, err
		}

	case StrategyHybrid:
		if NormalizeQuestion(opts.Question) == "" {
			result.Reply = NeedMoreDetailReply
			break
		}
		if e, ok := MatchKeyword(kb, opts.Question); ok {
			result.Matched = true
			result.Keyword = e.Keyword
			result.Reply = e.Reply
			break
		}
		if err := askSimilarity(idx, kb, opts, &result); err != nil {
			return AskResult{}, err
		}

	default:
		return AskResult{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	if opts.TokenCounter != nil {
		result.TokenCount = opts.TokenCounter.CountTokens(result.Reply)
	}

	return result, nil
}

func askSimilarity(idx *Index, kb *KnowledgeBase, opts AskOptions, result *AskResult) error {
	newVectorizer := opts.NewVectorizer
	if newVectorizer == nil {
		newVectorizer = DefaultVectorizerFactory
	}

	vectorizer, err := newVectorizer()
	if err != nil {
		return fmt.Errorf("failed to create vectorizer: %w", err)
	}

	fallback := opts.Fallback
	if fallback == "" {
		fallback = fallbackReply(kb)
	}

	threshold := DefaultSimilarityThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}

	match, err := Retrieve(opts.Question, idx.Pairs(), vectorizer,
		WithFallback(fallback),
		WithSimilarityThreshold(threshold),
	)
	if err != nil {
		return err
	}

	result.Reply = match.Answer
	result.Matched = match.Matched
	if match.Index >= 0 {
		score := match.Score
		result.Score = &score
	}
	return nil
}
