package embedding

import (
	"fmt"

	"github.com/mark-chris/supportbot/internal/config"
	"github.com/mark-chris/supportbot/internal/embedding/openai"
	"github.com/mark-chris/supportbot/internal/httpx"
	"github.com/mark-chris/supportbot/internal/knowledge"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Vectorizer providers
const (
	TFIDFProvider  = "tfidf"
	OpenAIProvider = "openai"
)

// NewVectorizerFactory returns a factory producing vectorizers for the
// configured provider. Remote providers share one HTTP client and circuit
// breaker across the vectorizers they produce.
func NewVectorizerFactory(cfg config.VectorizerConfig, logger *zap.Logger) (knowledge.VectorizerFactory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case "", TFIDFProvider:
		ngrams := cfg.NGrams
		return func() (knowledge.Vectorizer, error) {
			return knowledge.NewTFIDFVectorizer(ngrams), nil
		}, nil

	case OpenAIProvider:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("%s provider: %w", OpenAIProvider, openai.ErrMissingAPIKey)
		}
		client := &fasthttp.Client{Name: "supportbot"}
		breaker := httpx.NewCircuitBreaker("openai-embeddings", cfg.OpenAI.Timeout, cfg.OpenAI.MaxFailures)
		providerLogger := logger.With(zap.String("provider", OpenAIProvider))
		return func() (knowledge.Vectorizer, error) {
			return openai.NewVectorizer(client, cfg.OpenAI, breaker, providerLogger), nil
		}, nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
