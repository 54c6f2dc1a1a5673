package knowledge

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSimilarityThreshold is the minimum cosine similarity for a match
const DefaultSimilarityThreshold = 0.5

// ErrEmbeddingCountMismatch is returned when a vectorizer does not return
// one embedding per FAQ question.
var ErrEmbeddingCountMismatch = errors.New("vectorizer must return one embedding per FAQ entry")

// Vectorizer turns documents into embeddings, one per document and in the
// same order.
type Vectorizer interface {
	FitTransform(documents []string) ([][]float64, error)
	Transform(documents []string) ([][]float64, error)
}

// RetrieveOption configures Retrieve and GetAnswer
type RetrieveOption func(*retrieveOptions)

type retrieveOptions struct {
	fallback  string
	threshold float64
}

// WithFallback sets the reply returned when nothing matches.
// An empty fallback selects StillLearningReply.
func WithFallback(fallback string) RetrieveOption {
	return func(o *retrieveOptions) {
		o.fallback = fallback
	}
}

// WithSimilarityThreshold sets the minimum score for a match (inclusive)
func WithSimilarityThreshold(threshold float64) RetrieveOption {
	return func(o *retrieveOptions) {
		o.threshold = threshold
	}
}

// Retrieve finds the FAQ pair whose question embedding is closest to the
// question. Ties go to the earlier pair. When no pair scores at least the
// threshold the result carries the fallback and Matched is false.
func Retrieve(question string, pairs []FAQPair, vectorizer Vectorizer, opts ...RetrieveOption) (MatchResult, error) {
	o := retrieveOptions{threshold: DefaultSimilarityThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	fallbackText := o.fallback
	if fallbackText == "" {
		fallbackText = StillLearningReply
	}
	miss := MatchResult{Index: -1, Answer: fallbackText}

	if len(pairs) == 0 {
		return miss, nil
	}

	normalized := strings.TrimSpace(question)
	if normalized == "" {
		return miss, nil
	}

	questions := Questions(pairs)
	knowledgeEmbeddings, err := vectorizer.FitTransform(questions)
	if err != nil {
		return miss, fmt.Errorf("failed to embed FAQ questions: %w", err)
	}
	if len(knowledgeEmbeddings) != len(questions) {
		return miss, fmt.Errorf("%w: got %d embeddings for %d questions",
			ErrEmbeddingCountMismatch, len(knowledgeEmbeddings), len(questions))
	}

	questionEmbeddings, err := vectorizer.Transform([]string{normalized})
	if err != nil {
		return miss, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(questionEmbeddings) == 0 {
		return miss, nil
	}
	questionEmbedding := questionEmbeddings[0]

	bestIdx := -1
	bestScore := -1.0
	for i, embedding := range knowledgeEmbeddings {
		score := CosineSimilarity(questionEmbedding, embedding)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx == -1 {
		return miss, nil
	}

	miss.Score = bestScore
	if bestScore < o.threshold {
		miss.Index = bestIdx
		return miss, nil
	}

	return MatchResult{
		Index:   bestIdx,
		Score:   bestScore,
		Answer:  pairs[bestIdx].Answer,
		Matched: true,
	}, nil
}

// GetAnswer returns the answer of the closest FAQ pair, or the fallback
func GetAnswer(question string, pairs []FAQPair, vectorizer Vectorizer, opts ...RetrieveOption) (string, error) {
	result, err := Retrieve(question, pairs, vectorizer, opts...)
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}
